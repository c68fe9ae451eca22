package sheets

type appendRequest struct {
	Values [][]string `json:"values"`
}

type appendResponse struct {
	Updates struct {
		UpdatedRange string `json:"updatedRange"`
	} `json:"updates"`
}

type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

type updateRequest struct {
	Values [][]string `json:"values"`
}
