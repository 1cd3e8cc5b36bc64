package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/store"
)

const (
	adminCookie     = "admin_token"
	adminSessionTTL = 24 * time.Hour
)

// adminAuth holds the owner credentials and the live login tokens.
type adminAuth struct {
	username string
	hash     []byte
	// salt keys the visitor IP hashes; it changes on every start.
	salt string
	log  *zap.Logger

	mu     sync.Mutex
	tokens map[string]time.Time
}

func newAdminAuth(creds Credentials, log *zap.Logger) (*adminAuth, error) {
	hash := []byte(creds.PasswordHash)
	if len(hash) == 0 {
		if creds.Password == "" {
			return nil, errors.New("server: admin password or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}

	salt, err := generateToken()
	if err != nil {
		return nil, err
	}
	return &adminAuth{
		username: creds.Username,
		hash:     hash,
		salt:     salt,
		log:      log,
		tokens:   make(map[string]time.Time),
	}, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash IP address for privacy compliance (consistent per IP for one run)
func hashIP(salt, ip string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (a *adminAuth) verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}

func (a *adminAuth) issue(now time.Time) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.tokens[token] = now.Add(adminSessionTTL)
	a.mu.Unlock()
	return token, nil
}

func (a *adminAuth) revoke(token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}

func (a *adminAuth) valid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	exp, ok := a.tokens[token]
	if !ok {
		return false
	}
	if now.After(exp) {
		delete(a.tokens, token)
		return false
	}
	return true
}

// sessionToken returns the caller's admin token and whether it is live.
func (a *adminAuth) sessionToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(adminCookie)
	if err != nil || !a.valid(token, time.Now()) {
		return "", false
	}
	return token, true
}

func isHTMX(c *gin.Context) bool { return c.GetHeader("HX-Request") == "true" }

// Middleware to check admin authentication
func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.admin.sessionToken(c)
		if !ok {
			if isHTMX(c) {
				c.Header("HX-Redirect", "/admin/login")
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Set(adminCookie, token)
		c.Next()
	}
}

// Privacy-conscious visitor tracking middleware
func (s *Server) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			c.Writer.Status() >= http.StatusBadRequest ||
			strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/admin") ||
			strings.HasPrefix(path, "/favicon") ||
			strings.HasPrefix(path, "/privacy") {
			return
		}
		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			return
		}

		v := store.Visit{
			HashedIP:  hashIP(s.admin.salt, c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: s.now(),
		}
		if err := s.visits.RecordVisit(c.Request.Context(), v); err != nil {
			s.log.Warn("recording visitor", zap.Error(err))
		}
	}
}

// PurgeVisits deletes visit records older than the retention window.
func (s *Server) PurgeVisits(ctx context.Context) (int64, error) {
	if s.visits == nil || s.retention <= 0 {
		return 0, nil
	}
	n, err := s.visits.PurgeVisitsBefore(ctx, s.now().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("purging visits: %w", err)
	}
	if n > 0 {
		s.log.Info("privacy cleanup removed old visitor records", zap.Int64("rows", n), zap.Duration("retention", s.retention))
	}
	return n, nil
}

// AdminStats is served to the owner's dashboard.
type AdminStats struct {
	store.VisitStats
	Entities map[portfolio.Kind]int `json:"entities"`
}

func (s *Server) adminStats(ctx context.Context) (AdminStats, error) {
	stats := AdminStats{Entities: map[portfolio.Kind]int{
		portfolio.KindSkills:       s.portfolio.Skills().Len(),
		portfolio.KindAchievements: s.portfolio.Achievements().Len(),
		portfolio.KindExperience:   s.portfolio.Experience().Len(),
	}}
	if s.visits == nil {
		return stats, nil
	}
	vs, err := s.visits.VisitStats(ctx, s.now())
	if err != nil {
		return AdminStats{}, err
	}
	stats.VisitStats = vs
	return stats, nil
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{"retention": describeRetention(s.retention)})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		client := hashIP(s.admin.salt, c.ClientIP())
		if !s.admin.verify(c.PostForm("username"), c.PostForm("password")) {
			s.log.Warn("failed admin login", zap.String("client", client))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := s.admin.issue(s.now())
		if err != nil {
			s.log.Error("issuing admin token", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-login.html", gin.H{"error": "Login failed, please try again"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(adminCookie, token, int(adminSessionTTL.Seconds()), "/", "", false, true)
		s.log.Info("admin login", zap.String("client", client))
		c.Redirect(http.StatusFound, "/")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		if token, ok := s.admin.sessionToken(c); ok {
			s.admin.revoke(token)
			s.editor.Forget(token)
		}
		c.SetCookie(adminCookie, "", -1, "/", "", false, true)
		s.log.Info("admin logout", zap.String("client", hashIP(s.admin.salt, c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuthMiddleware())

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.adminStats(c.Request.Context())
		if err != nil {
			s.log.Error("loading admin stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/export", func(c *gin.Context) {
		data := s.portfolio.Snapshot()
		body, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+store.DataKey+".json")
		c.Data(http.StatusOK, "application/json", body)
	})

	admin.POST("/privacy/purge", func(c *gin.Context) {
		n, err := s.PurgeVisits(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})

	s.setupEditorRoutes(admin)
}

func describeRetention(d time.Duration) string {
	switch {
	case d <= 0:
		return "the site owner deletes them"
	case d%(24*time.Hour) == 0 && d >= 30*24*time.Hour:
		return fmt.Sprintf("%d days", int(d/(24*time.Hour)))
	default:
		return d.String()
	}
}
