package blog

import (
	"time"

	"assistante-suite/utils"
)

const PageSize = 10

type PostPayload struct {
	Slug         string     `json:"slug" validate:"omitempty,max=160"`
	Title        string     `json:"title" validate:"required,max=200"`
	Excerpt      string     `json:"excerpt" validate:"max=500"`
	BodyMarkdown string     `json:"body_markdown"`
	CategoryID   *int64     `json:"category_id"`
	Published    bool       `json:"published"`
	PublishedAt  *time.Time `json:"published_at"`
}

type CategoryPayload struct {
	Slug string `json:"slug" validate:"omitempty,max=100"`
	Name string `json:"name" validate:"required,max=100"`
}

type PostList struct {
	Posts []utils.BlogPost `json:"posts"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}
