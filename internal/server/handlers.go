package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/catalog"
	"medbuscador/internal/scrape"
	"medbuscador/internal/search"
	"medbuscador/internal/storage"
	"medbuscador/internal/view"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	user, err := s.store.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		s.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token := s.sessions.Create(user)
	c.SetCookie("session", token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "username": user.Username, "role": user.Role})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.sessions.Delete(bearerToken(c))
	c.SetCookie("session", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// handlePharmacies lists every source a result row can carry: the configured
// retailers, whatever appears in the catalog, and the web-search label.
func (s *Server) handlePharmacies(c *gin.Context) {
	seen := map[string]struct{}{}
	names := []string{}
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, p := range s.profiles {
		add(p.Name)
	}
	for _, name := range view.Pharmacies(s.svc.Catalog()) {
		add(name)
	}
	add(scrape.WebSourceName)
	c.JSON(http.StatusOK, gin.H{"pharmacies": names})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := s.svc.Search(c.Request.Context(), currentUser(c), req)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	sources := make([]gin.H, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		entry := gin.H{
			"source":    src.Source,
			"hits":      len(src.Hits),
			"elapsedMs": src.Elapsed.Milliseconds(),
		}
		if src.Err != nil {
			entry["error"] = src.Err.Error()
		}
		sources = append(sources, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"records":   resp.Records,
		"summary":   view.Summarize(resp.Records),
		"sources":   sources,
		"fromBase":  resp.FromBase,
		"fromWeb":   resp.FromWeb,
		"elapsedMs": resp.ElapsedMs,
	})
}

func (s *Server) handleCatalog(c *gin.Context) {
	records := view.Filter(s.svc.Catalog(), c.QueryArray("pharmacy"))
	view.Sort(records, c.Query("sort"), c.Query("desc") == "true")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per", "20"))
	pageRecords, totalPages := view.Paginate(records, page, perPage)

	c.JSON(http.StatusOK, gin.H{
		"records":    pageRecords,
		"totalPages": totalPages,
		"summary":    view.Summarize(records),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	records := view.Filter(s.svc.Catalog(), c.QueryArray("pharmacy"))
	view.Sort(records, c.Query("sort"), c.Query("desc") == "true")

	switch strings.ToLower(c.DefaultQuery("format", "xlsx")) {
	case "csv":
		blob, err := view.ExportCSV(records)
		if err != nil {
			s.logger.Error("csv export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="catalogo.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", blob)
	case "xlsx":
		blob, err := view.ExportXLSX(records)
		if err != nil {
			s.logger.Error("xlsx export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="catalogo.xlsx"`)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", blob)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}

func (s *Server) handleUploadBase(c *gin.Context) {
	s.handleUpload(c, s.base, catalog.ProfileMain)
}

func (s *Server) handleUploadExtra(c *gin.Context) {
	s.handleUpload(c, s.extra, catalog.ProfileExtra)
}

func (s *Server) handleUpload(c *gin.Context, repo catalog.Repository, profile catalog.SourceProfile) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}

	tmp := filepath.Join(os.TempDir(), "upload-"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		s.logger.Error("upload save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
		return
	}
	defer os.Remove(tmp)

	count, err := search.ImportInto(repo, catalog.ReadTable(tmp), profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("catalog replaced",
		zap.String("file", file.Filename),
		zap.String("target", repo.Path()),
		zap.Int("rows", count))
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

func (s *Server) handleListRows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rows": s.svc.Rows()})
}

func (s *Server) handleAddRow(c *gin.Context) {
	var rec internal.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row"})
		return
	}
	if err := s.svc.AddRow(rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (s *Server) handleUpdateRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row index"})
		return
	}
	var rec internal.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row"})
		return
	}
	if err := s.svc.UpdateRow(index, rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDeleteRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row index"})
		return
	}
	if err := s.svc.DeleteRow(index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and role required"})
		return
	}
	user := internal.User{Username: req.Username, Role: req.Role}
	if err := s.store.CreateUser(c.Request.Context(), user, req.Password); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (s *Server) handleUpdatePassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}
	err := s.store.UpdatePassword(c.Request.Context(), c.Param("username"), req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	username := c.Param("username")
	if username == currentUser(c).Username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
		return
	}
	if err := s.store.DeleteUser(c.Request.Context(), username); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.store.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
