package catalog

// Wire types for the catalog API. The upstream payload is positional
// and sparse (stats arrays indexed by price type, -1 sentinels); it is
// parsed here once so the rest of the engine only sees Record.

type productResponse struct {
	Products []productPayload `json:"products"`
	Error    *apiError        `json:"error,omitempty"`
}

type productPayload struct {
	ASIN            string         `json:"asin"`
	Title           string         `json:"title"`
	Brand           string         `json:"brand"`
	Description     string         `json:"description"`
	Features        []string       `json:"features"`
	ImagesCSV       string         `json:"imagesCSV"`
	Stats           *statsPayload  `json:"stats"`
	CategoryTree    []categoryNode `json:"categoryTree"`
	SimilarProducts []string       `json:"similarProducts"`
	// csv[16] is the paired rating series, csv[17] the review count
	// series: [time, value, time, value, ...]
	CSV [][]int64 `json:"csv"`
}

type statsPayload struct {
	// Indexed arrays; slot 0 is the primary listing price.
	Current []int64 `json:"current"`
	Avg     []int64 `json:"avg"`
	Avg30   []int64 `json:"avg30"`
	Avg90   []int64 `json:"avg90"`
	Avg180  []int64 `json:"avg180"`
	Avg365  []int64 `json:"avg365"`

	Rating      *int64 `json:"rating,omitempty"`
	ReviewCount *int64 `json:"reviewCount,omitempty"`
}

type categoryNode struct {
	CatID int64  `json:"catId"`
	Name  string `json:"name"`
}

type searchResponse struct {
	Categories map[string]categoryResult `json:"categories"`
	ASINList   []string                  `json:"asinList"`
	Error      *apiError                 `json:"error,omitempty"`
}

type categoryResult struct {
	Name       string   `json:"name"`
	TopSellers []string `json:"topSellers"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
