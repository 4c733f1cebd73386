package domain

// GradeCount is one bar of the grade frequency plot
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// Distribution is the cleaned input of the score density and grade count plots
type Distribution struct {
	Records     []ProductScoreRecord `json:"records"`
	Scores      []float64            `json:"scores"`
	Grades      []string             `json:"grades"`
	GradeCounts []GradeCount         `json:"gradeCounts"`
}

// CategoryMean is the mean Ecoscore of one primary product category
type CategoryMean struct {
	Category  string  `json:"category"`
	MeanScore float64 `json:"meanScore"`
	Count     int     `json:"count"`
}

// CategorySummary is the cleaned input of the category bar chart
type CategorySummary struct {
	Records []ProductScoreRecord `json:"records"`
	Rows    []CategoryMean       `json:"rows"`
}

// Report bundles everything one dashboard render needs
type Report struct {
	Records      []ProductScoreRecord `json:"records"`
	Distribution Distribution         `json:"distribution"`
	Categories   CategorySummary      `json:"categories"`
}
