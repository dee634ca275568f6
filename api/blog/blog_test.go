package blog_test

import (
	"net/http"
	"strconv"
	"testing"

	"assistante-suite/api/apitest"
	"assistante-suite/api/blog"
	"assistante-suite/utils"

	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, h *apitest.Harness, token string, payload blog.PostPayload) utils.BlogPost {
	t.Helper()
	resp := h.Do(t, http.MethodPost, "/api/admin/blog/posts", payload, token)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	_, post := apitest.Decode[utils.BlogPost](t, resp)
	require.NotNil(t, post)
	return *post
}

func TestAdminRoutesNeedSession(t *testing.T) {
	h := apitest.New(t)
	resp := h.Do(t, http.MethodPost, "/api/admin/blog/posts", blog.PostPayload{Title: "x"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestPostLifecycle(t *testing.T) {
	h := apitest.New(t)
	token := h.Login(t)

	post := createPost(t, h, token, blog.PostPayload{
		Title:        "Gérer son agenda",
		BodyMarkdown: "# Astuces\n\nUn **agenda** partagé.",
		Published:    true,
	})
	require.Equal(t, "gerer-son-agenda", post.Slug)
	require.NotNil(t, post.PublishedAt)

	draft := createPost(t, h, token, blog.PostPayload{Title: "Brouillon", Slug: "brouillon"})
	require.False(t, draft.Published)

	resp := h.Do(t, http.MethodPost, "/api/admin/blog/posts", blog.PostPayload{Title: "Autre", Slug: "gerer-son-agenda"}, token)
	require.Equal(t, http.StatusConflict, resp.Status)

	resp = h.Do(t, http.MethodGet, "/api/blog/posts", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	_, list := apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, 1, list.Total)
	require.Equal(t, 1, list.Pages)
	require.Equal(t, "gerer-son-agenda", list.Posts[0].Slug)

	resp = h.Do(t, http.MethodGet, "/api/admin/blog/posts", nil, token)
	_, list = apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, 2, list.Total)

	resp = h.Do(t, http.MethodGet, "/api/blog/posts/gerer-son-agenda", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	_, got := apitest.Decode[utils.BlogPost](t, resp)
	require.Contains(t, got.BodyHTML, `<h1 id="astuces">Astuces</h1>`)
	require.Contains(t, got.BodyHTML, "<strong>agenda</strong>")

	resp = h.Do(t, http.MethodGet, "/api/blog/posts/brouillon", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Status)

	resp = h.Do(t, http.MethodPut, "/api/admin/blog/posts/"+strconv.FormatInt(draft.ID, 10), blog.PostPayload{
		Title:     "Brouillon publié",
		Slug:      "brouillon",
		Published: true,
	}, token)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	resp = h.Do(t, http.MethodGet, "/api/blog/posts/brouillon", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)

	resp = h.Do(t, http.MethodDelete, "/api/admin/blog/posts/"+strconv.FormatInt(post.ID, 10), nil, token)
	require.Equal(t, http.StatusOK, resp.Status)
	resp = h.Do(t, http.MethodDelete, "/api/admin/blog/posts/"+strconv.FormatInt(post.ID, 10), nil, token)
	require.Equal(t, http.StatusNotFound, resp.Status)
	resp = h.Do(t, http.MethodDelete, "/api/admin/blog/posts/abc", nil, token)
	require.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestPostValidation(t *testing.T) {
	h := apitest.New(t)
	token := h.Login(t)

	resp := h.Do(t, http.MethodPost, "/api/admin/blog/posts", blog.PostPayload{}, token)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = h.Do(t, http.MethodPost, "/api/admin/blog/posts", blog.PostPayload{Title: "!!!"}, token)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = h.Do(t, http.MethodPut, "/api/admin/blog/posts/99", blog.PostPayload{Title: "Absent"}, token)
	require.Equal(t, http.StatusNotFound, resp.Status)
}

func TestCategoriesAndFilter(t *testing.T) {
	h := apitest.New(t)
	token := h.Login(t)

	resp := h.Do(t, http.MethodPost, "/api/admin/blog/categories", blog.CategoryPayload{Name: "Organisation"}, token)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	_, category := apitest.Decode[utils.BlogCategory](t, resp)
	require.Equal(t, "organisation", category.Slug)

	resp = h.Do(t, http.MethodPost, "/api/admin/blog/categories", blog.CategoryPayload{Name: "Organisation"}, token)
	require.Equal(t, http.StatusConflict, resp.Status)

	createPost(t, h, token, blog.PostPayload{Title: "Classée", CategoryID: &category.ID, Published: true})
	createPost(t, h, token, blog.PostPayload{Title: "Libre", Published: true})

	resp = h.Do(t, http.MethodGet, "/api/blog/posts?category=organisation", nil, "")
	_, list := apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, 1, list.Total)
	require.Equal(t, "classee", list.Posts[0].Slug)

	resp = h.Do(t, http.MethodGet, "/api/blog/categories", nil, "")
	_, categories := apitest.Decode[[]utils.BlogCategory](t, resp)
	require.Len(t, *categories, 1)

	resp = h.Do(t, http.MethodDelete, "/api/admin/blog/categories/"+strconv.FormatInt(category.ID, 10), nil, token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = h.Do(t, http.MethodGet, "/api/blog/posts?category=organisation", nil, "")
	_, list = apitest.Decode[blog.PostList](t, resp)
	require.Zero(t, list.Total)
}

func TestPagination(t *testing.T) {
	h := apitest.New(t)
	token := h.Login(t)
	for i := 0; i < blog.PageSize+3; i++ {
		createPost(t, h, token, blog.PostPayload{Title: "Article " + strconv.Itoa(i), Published: true})
	}

	resp := h.Do(t, http.MethodGet, "/api/blog/posts?page=2", nil, "")
	_, list := apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, blog.PageSize+3, list.Total)
	require.Equal(t, 2, list.Page)
	require.Equal(t, 2, list.Pages)
	require.Len(t, list.Posts, 3)

	resp = h.Do(t, http.MethodGet, "/api/blog/posts?page=0", nil, "")
	_, list = apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, 1, list.Page)
	require.Len(t, list.Posts, blog.PageSize)
}

func TestPublicResponsesAreCachedUntilAWrite(t *testing.T) {
	h := apitest.New(t)
	token := h.Login(t)
	createPost(t, h, token, blog.PostPayload{Title: "Premier", Published: true})

	h.Do(t, http.MethodGet, "/api/blog/posts", nil, "")
	h.Do(t, http.MethodGet, "/api/blog/categories", nil, "")
	require.Equal(t, 2, h.Cache.Len())

	// a post slipped in behind the cache stays invisible
	_ = h.Blog.CreatePost(t.Context(), &utils.BlogPost{Slug: "cache", Title: "Cache", Published: true})
	resp := h.Do(t, http.MethodGet, "/api/blog/posts", nil, "")
	_, list := apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, 1, list.Total)

	createPost(t, h, token, blog.PostPayload{Title: "Second", Published: true})
	require.Zero(t, h.Cache.Len())

	resp = h.Do(t, http.MethodGet, "/api/blog/posts", nil, "")
	_, list = apitest.Decode[blog.PostList](t, resp)
	require.Equal(t, 3, list.Total)
}
