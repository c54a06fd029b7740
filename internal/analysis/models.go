package analysis

import "time"

type ScriptureReference struct {
	Reference  string `json:"reference"`
	Text       string `json:"text"`
	Connection string `json:"connection"`
}

type Analysis struct {
	AnalysisID           string               `gorm:"primaryKey" json:"analysis_id"`
	UserID               string               `gorm:"not null;index:idx_analyses_user_created,priority:1" json:"user_id"`
	NewsHeadline         string               `gorm:"not null" json:"news_headline"`
	NewsContent          string               `gorm:"type:text;not null" json:"news_content"`
	ScriptureReferences  []ScriptureReference `gorm:"type:jsonb;serializer:json;not null" json:"scripture_references"`
	Analysis             string               `gorm:"type:text;not null" json:"analysis"`
	SpiritualApplication string               `gorm:"type:text;not null" json:"spiritual_application"`
	CreatedAt            time.Time            `gorm:"not null;index:idx_analyses_user_created,priority:2,sort:desc" json:"created_at"`
}

func (Analysis) TableName() string { return "app_analysis.analyses" }

type analyzeRequest struct {
	NewsHeadline string `json:"news_headline"`
	NewsContent  string `json:"news_content"`
}

type Headline struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Link      string     `json:"link"`
	Published *time.Time `json:"published"`
}

type headlinesResponse struct {
	Source    string     `json:"source"`
	Headlines []Headline `json:"headlines"`
}
