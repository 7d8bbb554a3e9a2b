package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coldvault/vault/pkg/account"
	"github.com/coldvault/vault/pkg/envelope"
	"github.com/coldvault/vault/pkg/merkle"
	"github.com/coldvault/vault/pkg/store"
)

type createRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleCreate implements POST /create: 200 on success, 401 if the name is
// already taken, 500 on any other failure.
func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusInternalServerError, "malformed request")
		return
	}

	switch s.accounts.Create(req.Name, req.Password) {
	case account.Created:
		c.String(http.StatusOK, "ok")
	case account.AlreadyExists:
		c.String(http.StatusUnauthorized, "name taken")
	default:
		c.String(http.StatusInternalServerError, "internal error")
	}
}

type loginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleLogin implements POST /login: 200 ok, 403 wrong password, 404
// unknown account, 500 other. On success, when RequireAuth is enabled, it
// also returns a session token the client must echo back as
// X-Session-Token on /push and /pull.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusInternalServerError, "malformed request")
		return
	}

	switch s.accounts.Authenticate(req.Name, req.Password) {
	case account.Ok:
		if s.requireAuth {
			c.Header("X-Session-Token", s.newSessionToken(req.Name))
		}
		c.String(http.StatusOK, "ok")
	case account.WrongPassword:
		c.String(http.StatusForbidden, "wrong password")
	case account.NotFound:
		c.String(http.StatusNotFound, "unknown account")
	default:
		c.String(http.StatusInternalServerError, "internal error")
	}
}

// handlePush implements POST /push: the body is an Envelope, the response
// is empty on success. Domain errors translate to 507 (StoreFull) or 500.
func (s *Server) handlePush(c *gin.Context) {
	var env envelope.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.String(http.StatusInternalServerError, "malformed envelope")
		return
	}

	if err := s.store.Add(env); err != nil {
		if errors.Is(err, store.ErrStoreFull) {
			c.String(http.StatusInsufficientStorage, "store full")
			return
		}
		s.logger.WithError(err).Error("push failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusOK)
}

type pullRequest struct {
	NameHash string `json:"name_hash" binding:"required"`
}

// handlePull implements GET /pull: the body carries {name_hash}; the
// response is JSON null when the slot is unbound, or the two-element
// array [envelope, proof] otherwise — a literal tuple rather than a
// named object, so the shape is unambiguous across client languages.
func (s *Server) handlePull(c *gin.Context) {
	var req pullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusInternalServerError, "malformed request")
		return
	}

	env, ok, err := s.store.Get(req.NameHash)
	if err != nil {
		s.logger.WithError(err).Error("pull failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}

	proof, ok, err := s.store.Proof(req.NameHash)
	if err != nil || !ok {
		s.logger.WithError(err).Error("pull: proof lookup failed after a successful Get")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, []interface{}{env, *proof})
}

type listEntryResponse struct {
	NameHash  string             `json:"name_hash"`
	Size      int                `json:"size"`
	Name      envelope.ByteArray `json:"name"`
	Nonce     envelope.ByteArray `json:"nonce"`
	NameNonce envelope.ByteArray `json:"name_nonce"`
}

type listResponse struct {
	TopHash merkle.Digest       `json:"top_hash"`
	List    []listEntryResponse `json:"list"`
}

// handleList implements GET /list.
func (s *Server) handleList(c *gin.Context) {
	topHash, entries, err := s.store.List()
	if err != nil {
		s.logger.WithError(err).Error("list failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	resp := listResponse{TopHash: topHash, List: make([]listEntryResponse, len(entries))}
	for i, e := range entries {
		resp.List[i] = listEntryResponse{
			NameHash:  e.NameHash,
			Size:      e.Size,
			Name:      e.Name,
			Nonce:     e.Nonce,
			NameNonce: e.NameNonce,
		}
	}
	c.JSON(http.StatusOK, resp)
}
