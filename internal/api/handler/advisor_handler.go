package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// AdvisorHandler serves the knowledge base and the advisory chat.
type AdvisorHandler struct {
	advisor   ports.AdvisorService
	knowledge ports.KnowledgeService
}

func NewAdvisorHandler(advisor ports.AdvisorService, knowledge ports.KnowledgeService) *AdvisorHandler {
	return &AdvisorHandler{advisor: advisor, knowledge: knowledge}
}

// AddArticle handles POST /v1/orgs/:org_id/knowledge.
//
// @Summary      Add a knowledge-base article
// @Tags         knowledge
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string                true  "Organization id"
// @Param        body    body      createArticleRequest  true  "Article"
// @Success      201     {object}  domain.Article
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/knowledge [post]
func (h *AdvisorHandler) AddArticle(c echo.Context) error {
	var req createArticleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.knowledge.AddArticle(c.Request().Context(), callerIdentity(c), ports.CreateArticleInput{
		OrgID: c.Param("org_id"),
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// ListArticles handles GET /v1/orgs/:org_id/knowledge.
//
// @Summary      List knowledge-base articles, newest first
// @Tags         knowledge
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string  true  "Organization id"
// @Success      200     {array}   domain.Article
// @Failure      403     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/knowledge [get]
func (h *AdvisorHandler) ListArticles(c echo.Context) error {
	arts, err := h.knowledge.ListArticles(c.Request().Context(), callerIdentity(c), c.Param("org_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, arts)
}

// Search handles GET /v1/orgs/:org_id/knowledge/search?q=.
//
// @Summary      Search the knowledge base
// @Tags         knowledge
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string  true  "Organization id"
// @Param        q       query     string  true  "Query"
// @Success      200     {object}  searchResponse
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/knowledge/search [get]
func (h *AdvisorHandler) Search(c echo.Context) error {
	results, err := h.knowledge.Search(c.Request().Context(), callerIdentity(c), c.Param("org_id"), c.QueryParam("q"))
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return c.JSON(http.StatusOK, searchResponse{Results: results})
}

// CreateThread handles POST /v1/orgs/:org_id/threads.
//
// @Summary      Start an advisory conversation
// @Tags         advisor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string               true  "Organization id"
// @Param        body    body      createThreadRequest  false "Thread"
// @Success      201     {object}  domain.Thread
// @Failure      403     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/threads [post]
func (h *AdvisorHandler) CreateThread(c echo.Context) error {
	var req createThreadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.advisor.CreateThread(c.Request().Context(), callerIdentity(c), c.Param("org_id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// SendMessage handles POST /v1/threads/:id/messages. The reply is generated
// in the background and shows up in the message feed.
//
// @Summary      Send a message to the advisor
// @Tags         advisor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Thread id"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      202   {object}  domain.Message
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/threads/{id}/messages [post]
func (h *AdvisorHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.advisor.SendMessage(c.Request().Context(), callerIdentity(c), c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, m)
}

// ListMessages handles GET /v1/threads/:id/messages.
//
// @Summary      Message feed of a thread, oldest first
// @Tags         advisor
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Thread id"
// @Success      200  {array}   domain.Message
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/threads/{id}/messages [get]
func (h *AdvisorHandler) ListMessages(c echo.Context) error {
	msgs, err := h.advisor.ListMessages(c.Request().Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// Suggest handles POST /v1/threads/:id/suggestion.
//
// @Summary      Suggest the next question to ask
// @Tags         advisor
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Thread id"
// @Success      200  {object}  suggestionResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/threads/{id}/suggestion [post]
func (h *AdvisorHandler) Suggest(c echo.Context) error {
	q, err := h.advisor.SuggestNextQuestion(c.Request().Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, suggestionResponse{Question: q})
}
