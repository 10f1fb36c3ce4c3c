package models

const RoleBot = "bot"

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentTable ContentType = "table"
	ContentChart ContentType = "chart"
)

// BotResponse is the reply shape rendered by the chat UI.
type BotResponse struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Timestamp string         `json:"timestamp"`
	Content   []ContentBlock `json:"content"`
}

// ContentBlock is a tagged union: Data is a string for text blocks,
// TableData for tables and ChartData for charts.
type ContentBlock struct {
	Type ContentType `json:"type"`
	Data any         `json:"data"`
}

type TableData struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

type ChartData struct {
	Type      string       `json:"type"`
	ChartData []ChartPoint `json:"chartData"`
	Coin      string       `json:"coin"`
}

func TextBlock(s string) ContentBlock {
	return ContentBlock{Type: ContentText, Data: s}
}

func TableBlock(t TableData) ContentBlock {
	return ContentBlock{Type: ContentTable, Data: t}
}

func ChartBlock(c ChartData) ContentBlock {
	return ContentBlock{Type: ContentChart, Data: c}
}
