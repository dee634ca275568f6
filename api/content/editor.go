package content

import (
	"errors"
	"fmt"
	"time"

	appAPIHelper "assistante-suite/utils/api"
	"assistante-suite/utils/contentstore"
	redisManager "assistante-suite/utils/database/redis"
	"assistante-suite/utils/jsonform"
	appLogger "assistante-suite/utils/logger"

	"github.com/gofiber/fiber/v3"
)

type ExpandPayload struct {
	SectionID string `json:"section_id" validate:"required"`
}

type PathPayload struct {
	Path jsonform.Path `json:"path"`
}

type RenamePayload struct {
	Path    jsonform.Path `json:"path"`
	NewName string        `json:"new_name" validate:"required,max=200"`
}

type BeginAddPayload struct {
	SectionPath jsonform.Path `json:"section_path"`
}

type AddPayload struct {
	SectionPath jsonform.Path `json:"section_path"`
	FieldName   string        `json:"field_name" validate:"max=200"`
	FieldType   string        `json:"field_type" validate:"required"`
}

type ReorderPayload struct {
	SectionID string `json:"section_id" validate:"required"`
	From      int    `json:"from" validate:"min=0"`
	To        int    `json:"to" validate:"min=0"`
}

type SubmitPayload struct {
	Fields []jsonform.Field `json:"fields" validate:"required"`
}

// editor runs one request against the caller's persisted editor session.
type editor struct {
	apiHelper *appAPIHelper.RouterHelpers
}

func (e *editor) options() jsonform.SessionOptions {
	cfg := e.apiHelper.Config.Editor
	var expand []string
	if len(cfg.ExpandKeys) > 0 {
		expand = cfg.ExpandKeys
	}
	return jsonform.SessionOptions{
		ExpandKeys:   expand,
		Labels:       jsonform.LabelsFor(cfg.Locale),
		HistoryLimit: cfg.HistoryLimit,
		Now:          e.apiHelper.Clock,
	}
}

func (e *editor) ttl() time.Duration {
	hours := e.apiHelper.Config.Editor.SessionTTLHours
	if hours <= 0 {
		hours = 12
	}
	return time.Duration(hours) * time.Hour
}

func stateKey(c fiber.Ctx) string {
	return redisManager.BuildEditorStateKey(appAPIHelper.UserID(c), c.Params("page_id"))
}

// open restores the caller's session for the page, or starts one from the
// stored document.
func (e *editor) open(c fiber.Ctx) (*jsonform.Session, error) {
	store := e.apiHelper.DBManager.Pages
	states := e.apiHelper.DBManager.EditorStates
	state, err := states.LoadState(c.Context(), stateKey(c))
	if err != nil {
		appLogger.Warnf("Editor state for %s unreadable, starting over: %v", stateKey(c), err)
		state = nil
	}
	if state != nil && state.DocumentID == c.Params("page_id") {
		return jsonform.RestoreSession(store, *state, e.options()), nil
	}
	session := jsonform.NewSession(store, c.Params("page_id"), e.options())
	if err := session.Load(c.Context()); err != nil {
		return nil, err
	}
	return session, nil
}

// run applies op to the session, persists the session and answers with its
// view. The session is persisted even when op fails so a freshly loaded
// document is not read again on the next request.
func (e *editor) run(op func(c fiber.Ctx, s *jsonform.Session) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		session, err := e.open(c)
		if err != nil {
			return editorError(c, err)
		}
		opErr := op(c, session)
		if err := e.apiHelper.DBManager.EditorStates.SaveState(c.Context(), stateKey(c), session.State(), e.ttl()); err != nil {
			appLogger.Errorf("Could not persist editor state %s: %v", stateKey(c), err)
			return appAPIHelper.ErrorInternal(c, "could not persist editor session")
		}
		if opErr != nil {
			return editorError(c, opErr)
		}
		view := session.View()
		return appAPIHelper.SuccessResponse(c, "ok", &view)
	}
}

func editorError(c fiber.Ctx, err error) error {
	var be *bodyError
	if errors.As(err, &be) {
		return appAPIHelper.BindError(c, be.err)
	}
	switch {
	case errors.Is(err, contentstore.ErrDocumentNotFound),
		errors.Is(err, jsonform.ErrPathNotFound):
		return appAPIHelper.ErrorNotFound(c, err.Error())
	case errors.Is(err, contentstore.ErrRevisionConflict):
		return appAPIHelper.ErrorConflict(c, "page was modified by someone else; reload the editor")
	case errors.Is(err, jsonform.ErrFieldExists):
		return appAPIHelper.ErrorConflict(c, err.Error())
	case errors.Is(err, jsonform.ErrInvalidName),
		errors.Is(err, jsonform.ErrNotContainer),
		errors.Is(err, jsonform.ErrNotRenamable),
		errors.Is(err, jsonform.ErrInvalidFieldType),
		errors.Is(err, jsonform.ErrRootPath),
		errors.Is(err, jsonform.ErrInvalidMove),
		errors.Is(err, jsonform.ErrInvalidState),
		errors.Is(err, jsonform.ErrNothingToUndo),
		errors.Is(err, jsonform.ErrNotLoaded),
		errors.Is(err, jsonform.ErrDocumentInvalid):
		return appAPIHelper.ErrorUnprocessable(c, err.Error())
	default:
		appLogger.Errorf("Editor request %s %s failed: %v", c.Method(), c.Path(), err)
		return appAPIHelper.ErrorInternal(c, "editor error")
	}
}

// bodyError carries a c.Bind() failure out of an editor operation.
type bodyError struct{ err error }

func (b *bodyError) Error() string { return b.err.Error() }
func (b *bodyError) Unwrap() error { return b.err }

func bind[T any](c fiber.Ctx) (*T, error) {
	var payload T
	if err := c.Bind().Body(&payload); err != nil {
		return nil, &bodyError{err: err}
	}
	return &payload, nil
}

func handleView(e *editor) fiber.Handler {
	return e.run(func(fiber.Ctx, *jsonform.Session) error { return nil })
}

func handleExpand(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[ExpandPayload](c)
		if err != nil {
			return err
		}
		s.ToggleSection(p.SectionID)
		return nil
	})
}

func handleBeginRename(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[PathPayload](c)
		if err != nil {
			return err
		}
		return s.BeginRename(p.Path)
	})
}

// oneShot drops the pending edit a single-request rename or add opened when
// its commit fails.
func oneShot(s *jsonform.Session, err error) error {
	if err != nil {
		s.Cancel()
	}
	return err
}

// matchPending refuses a commit whose body names another path than the edit
// already pending. An empty path in the body commits the pending edit.
func matchPending(pending, requested jsonform.Path) error {
	if len(requested) == 0 || requested.Equal(pending) {
		return nil
	}
	return fmt.Errorf("%w: %s is pending, not %s", jsonform.ErrInvalidState, pending, requested)
}

// handleRename commits a rename. Without a pending rename the path in the
// body starts one first; with one, the body path must match it or be empty.
func handleRename(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[RenamePayload](c)
		if err != nil {
			return err
		}
		if st := s.State(); st.Mode != jsonform.ModeViewing {
			if st.PendingRename != nil {
				if err := matchPending(st.PendingRename.Path, p.Path); err != nil {
					return err
				}
			}
			return s.CommitRename(c.Context(), p.NewName)
		}
		if err := s.BeginRename(p.Path); err != nil {
			return err
		}
		return oneShot(s, s.CommitRename(c.Context(), p.NewName))
	})
}

func handleBeginAdd(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[BeginAddPayload](c)
		if err != nil {
			return err
		}
		return s.BeginAdd(p.SectionPath)
	})
}

func handleAdd(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[AddPayload](c)
		if err != nil {
			return err
		}
		fieldType, ok := jsonform.ParseFieldType(p.FieldType)
		if !ok {
			return jsonform.ErrInvalidFieldType
		}
		if st := s.State(); st.Mode != jsonform.ModeViewing {
			if st.PendingAdd != nil {
				if err := matchPending(st.PendingAdd.SectionPath, p.SectionPath); err != nil {
					return err
				}
			}
			return s.CommitAdd(c.Context(), p.FieldName, fieldType)
		}
		if err := s.BeginAdd(p.SectionPath); err != nil {
			return err
		}
		return oneShot(s, s.CommitAdd(c.Context(), p.FieldName, fieldType))
	})
}

func handleCancel(e *editor) fiber.Handler {
	return e.run(func(_ fiber.Ctx, s *jsonform.Session) error {
		s.Cancel()
		return nil
	})
}

func handleDelete(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[PathPayload](c)
		if err != nil {
			return err
		}
		return s.Delete(c.Context(), p.Path)
	})
}

func handleReorder(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[ReorderPayload](c)
		if err != nil {
			return err
		}
		return s.Reorder(c.Context(), p.SectionID, p.From, p.To)
	})
}

func handleSubmit(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		p, err := bind[SubmitPayload](c)
		if err != nil {
			return err
		}
		return s.Submit(c.Context(), p.Fields)
	})
}

func handleUndo(e *editor) fiber.Handler {
	return e.run(func(c fiber.Ctx, s *jsonform.Session) error {
		return s.Undo(c.Context())
	})
}

// handleReload throws the session away, history included, and starts over
// from the stored document.
func handleReload(e *editor) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := e.apiHelper.DBManager.EditorStates.DeleteState(c.Context(), stateKey(c)); err != nil {
			appLogger.Errorf("Could not drop editor state %s: %v", stateKey(c), err)
			return appAPIHelper.ErrorInternal(c, "could not reset editor session")
		}
		return handleView(e)(c)
	}
}
