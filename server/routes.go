// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/lunaris"
	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// registerRoutes sets up the API routes on the gin router.
func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", handleHealth())

	api := router.Group("/api/v1")
	api.POST("/chat", s.handleChat())
	api.POST("/suggestions", s.handleSuggestions())
	api.GET("/card/random", s.handleRandomCard())
	api.GET("/card/:id", s.handleCard())
	api.GET("/cards", s.handleCards())
	api.GET("/cards/category/:category", s.handleCardsByCategory())
}

// cardID accepts card identifiers sent as JSON strings or numbers; decks
// exported from different tools disagree on the type.
type cardID string

func (c *cardID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		*c = cardID(unquoted)
		return nil
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return fmt.Errorf("card id must be a string or integer, got %s", raw)
	}
	*c = cardID(raw)
	return nil
}

// cardRef is a card reference in a request body. Only the id is consulted;
// callers may echo back full card objects and the extra fields are ignored.
type cardRef struct {
	ID cardID `json:"id"`
}

type chatRequest struct {
	UserInput string         `json:"user_input" binding:"required"`
	SessionID string         `json:"session_id"`
	Provider  string         `json:"model_provider"`
	Model     string         `json:"model_name"`
	Params    map[string]any `json:"model_params"`
	Cards     []cardRef      `json:"cards"`
	UserID    string         `json:"user_id"`
}

type chatResponse struct {
	Response  gin.H  `json:"response"`
	SessionID string `json:"session_id"`
}

type suggestionRequest struct {
	Cards     []cardRef `json:"cards"`
	SessionID string    `json:"session_id"`
}

type suggestionResponse struct {
	TotalSuggestions int      `json:"total_suggestions"`
	Suggestions      []string `json:"suggestions"`
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) handleChat() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		resp, err := s.service.Chat(c.Request.Context(), lunaris.ChatRequest{
			UserInput: req.UserInput,
			SessionID: req.SessionID,
			Provider:  req.Provider,
			Model:     req.Model,
			Params:    stringParams(req.Params),
			CardIDs:   cardIDs(req.Cards),
			UserID:    req.UserID,
		})
		if err != nil {
			s.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, chatResponse{
			Response:  gin.H{"output": resp.Output},
			SessionID: resp.SessionID,
		})
	}
}

func (s *Server) handleSuggestions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req suggestionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		resp, err := s.service.Suggest(c.Request.Context(), lunaris.SuggestionRequest{
			CardIDs:   cardIDs(req.Cards),
			SessionID: req.SessionID,
		})
		if err != nil {
			s.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, suggestionResponse{
			TotalSuggestions: resp.Total,
			Suggestions:      resp.Suggestions,
		})
	}
}

func (s *Server) handleCard() gin.HandlerFunc {
	return func(c *gin.Context) {
		card, context, err := s.service.Card(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"card": cardView(card), "context": context})
	}
}

func (s *Server) handleCards() gin.HandlerFunc {
	return func(c *gin.Context) {
		cards, err := s.service.Cards(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cards": cardViews(cards), "total": len(cards)})
	}
}

func (s *Server) handleCardsByCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		cards, err := s.service.CardsByCategory(c.Request.Context(), category)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cards":    cardViews(cards),
			"total":    len(cards),
			"category": category,
		})
	}
}

func (s *Server) handleRandomCard() gin.HandlerFunc {
	return func(c *gin.Context) {
		card, err := s.service.RandomCard(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"card": cardView(card)})
	}
}

// fail maps a service error to its status code: lookup misses are 404,
// configuration problems 400, everything else 500.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrCardNotFound),
		errors.Is(err, storage.ErrSessionNotFound),
		errors.Is(err, storage.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, core.ErrInvalidProvider),
		errors.Is(err, ai.ErrUnknownProvider),
		errors.Is(err, ai.ErrMissingAPIKey):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

func cardIDs(refs []cardRef) []string {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = string(ref.ID)
	}
	return ids
}

// stringParams flattens loosely typed model parameters to strings; the
// pipeline parses the ones it understands and ignores the rest.
func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// cardView renders a card the way the deck export spells its fields,
// displaying the name with underscores replaced by spaces.
func cardView(card *core.Card) gin.H {
	return gin.H{
		"id":         card.ID,
		"card":       strings.ReplaceAll(card.Name, "_", " "),
		"short_meam": card.ShortMeaning,
		"kind":       card.Kind,
		"category":   card.Category,
		"content": gin.H{
			"overall_meaning":     card.Content.OverallMeaning,
			"attune_to_the_moon":  card.Content.AttuneToTheMoon,
			"additional_meanings": card.Content.AdditionalMeanings,
			"the_teaching":        card.Content.TheTeaching,
		},
	}
}

func cardViews(cards []*core.Card) []gin.H {
	views := make([]gin.H, len(cards))
	for i, card := range cards {
		views[i] = cardView(card)
	}
	return views
}
