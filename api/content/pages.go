package content

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"
	"assistante-suite/utils/contentstore"
	"assistante-suite/utils/jsonform"
	appLogger "assistante-suite/utils/logger"

	"github.com/gofiber/fiber/v3"
)

type CreatePagePayload struct {
	ID      string          `json:"id" validate:"required,max=100"`
	Title   string          `json:"title" validate:"max=200"`
	Content json.RawMessage `json:"content"`
}

type UpdatePagePayload struct {
	Title    string          `json:"title" validate:"max=200"`
	Content  json.RawMessage `json:"content" validate:"required"`
	Revision int64           `json:"revision" validate:"min=1"`
}

type PageResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Revision  int64           `json:"revision"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Content   json.RawMessage `json:"content"`
}

func toPageResponse(doc *contentstore.StoredDocument) PageResponse {
	return PageResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Revision:  doc.Revision,
		UpdatedAt: doc.UpdatedAt,
		Content:   json.RawMessage(doc.Content),
	}
}

// canonicalContent checks that raw is a JSON document and re-serializes it
// with its key order intact. Empty input becomes an empty object.
func canonicalContent(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	doc, err := jsonform.ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	return jsonform.MarshalDocument(doc)
}

func pageError(c fiber.Ctx, err error, pageID string) error {
	switch {
	case errors.Is(err, contentstore.ErrDocumentNotFound):
		return appAPIHelper.ErrorNotFound(c, "page not found")
	case errors.Is(err, contentstore.ErrDocumentExists):
		return appAPIHelper.ErrorConflict(c, "page already exists")
	case errors.Is(err, contentstore.ErrRevisionConflict):
		return appAPIHelper.ErrorConflict(c, "page was modified by someone else; reload it")
	default:
		appLogger.Errorf("Page %s: %v", pageID, err)
		return appAPIHelper.ErrorInternal(c, "page store error")
	}
}

func handleListPages(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		pages, err := apiHelper.DBManager.Pages.ListPages(c.Context())
		if err != nil {
			return pageError(c, err, "*")
		}
		return appAPIHelper.SuccessResponse(c, "ok", &pages)
	}
}

func handleGetPage(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		pageID := c.Params("page_id")
		doc, err := apiHelper.DBManager.Pages.LoadDocument(c.Context(), pageID)
		if err != nil {
			return pageError(c, err, pageID)
		}
		resp := toPageResponse(doc)
		return appAPIHelper.SuccessResponse(c, "ok", &resp)
	}
}

func handleCreatePage(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		var payload CreatePagePayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}
		if utils.Slugify(payload.ID) != payload.ID {
			return appAPIHelper.ErrorUnprocessable(c, "id must be lowercase letters, digits and dashes")
		}
		data, err := canonicalContent(payload.Content)
		if err != nil {
			return appAPIHelper.ErrorUnprocessable(c, err.Error())
		}
		created, err := apiHelper.DBManager.Pages.CreatePage(c.Context(), contentstore.StoredDocument{
			ID:      payload.ID,
			Title:   payload.Title,
			Content: data,
		})
		if err != nil {
			return pageError(c, err, payload.ID)
		}
		appLogger.Infof("Admin %s created page %s", appAPIHelper.UserID(c), created.ID)
		resp := toPageResponse(created)
		return appAPIHelper.CreatedResponse(c, "Page created", &resp)
	}
}

// handleReplacePage overwrites a page's JSON in one go, bypassing the editor.
func handleReplacePage(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		pageID := c.Params("page_id")
		var payload UpdatePagePayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}
		data, err := canonicalContent(payload.Content)
		if err != nil {
			return appAPIHelper.ErrorUnprocessable(c, err.Error())
		}
		revision, err := apiHelper.DBManager.Pages.SaveDocument(c.Context(), contentstore.StoredDocument{
			ID:       pageID,
			Title:    payload.Title,
			Content:  data,
			Revision: payload.Revision,
		})
		if err != nil {
			return pageError(c, err, pageID)
		}
		resp := map[string]int64{"revision": revision}
		return appAPIHelper.SuccessResponse(c, "Page saved", &resp)
	}
}

func handleDeletePage(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		pageID := c.Params("page_id")
		if err := apiHelper.DBManager.Pages.DeletePage(c.Context(), pageID); err != nil {
			return pageError(c, err, pageID)
		}
		appLogger.Infof("Admin %s deleted page %s", appAPIHelper.UserID(c), pageID)
		return appAPIHelper.SuccessResponse[string](c, "Page deleted", nil)
	}
}

// handlePublicPage serves the page JSON itself, as stored.
func handlePublicPage(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		pageID := c.Params("page_id")
		doc, err := apiHelper.DBManager.Pages.LoadDocument(c.Context(), pageID)
		if err != nil {
			return pageError(c, err, pageID)
		}
		etag := `"` + pageID + "-" + strconv.FormatInt(doc.Revision, 10) + `"`
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}
		c.Set(fiber.HeaderETag, etag)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(doc.Content)
	}
}
