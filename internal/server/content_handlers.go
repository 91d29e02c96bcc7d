package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/content"
	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleListStrategies(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	records, err := h.content.ListStrategies(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *httpHandler) handleGetStrategy(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	record, found, err := h.content.GetStrategy(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *httpHandler) handleCreateStrategy(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var insert content.StrategyInsert
	if !h.bindJSON(c, &insert) {
		return
	}
	record, err := h.content.CreateStrategy(c.Request.Context(), owner, insert)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) handleDeleteStrategy(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.content.DeleteStrategy(c.Request.Context(), owner, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListArchetypes(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	records, err := h.content.ListArchetypeResults(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// handleLatestArchetype answers null rather than 404 when no quiz has been taken yet.
func (h *httpHandler) handleLatestArchetype(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	record, found, err := h.content.LatestArchetypeResult(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *httpHandler) handleGetArchetype(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	record, found, err := h.content.GetArchetypeResult(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *httpHandler) handleCreateArchetype(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var insert content.ArchetypeInsert
	if !h.bindJSON(c, &insert) {
		return
	}
	record, err := h.content.CreateArchetypeResult(c.Request.Context(), owner, insert)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) handleListVoicePosts(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	records, err := h.content.ListVoicePosts(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *httpHandler) handleGetVoicePost(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	record, found, err := h.content.GetVoicePost(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *httpHandler) handleCreateVoicePost(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var insert content.VoicePostInsert
	if !h.bindJSON(c, &insert) {
		return
	}
	record, err := h.content.CreateVoicePost(c.Request.Context(), owner, insert)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) handleDeleteVoicePost(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.content.DeleteVoicePost(c.Request.Context(), owner, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleListCaseStudies doubles as search when q is present.
func (h *httpHandler) handleListCaseStudies(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	records, err := h.content.SearchCaseStudies(c.Request.Context(), owner, c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *httpHandler) handleGetCaseStudy(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	record, found, err := h.content.GetCaseStudy(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *httpHandler) handleCreateCaseStudy(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var insert content.CaseStudyInsert
	if !h.bindJSON(c, &insert) {
		return
	}
	record, err := h.content.CreateCaseStudy(c.Request.Context(), owner, insert)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) handleDeleteCaseStudy(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.content.DeleteCaseStudy(c.Request.Context(), owner, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
