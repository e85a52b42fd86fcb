// Package host is the local service that receives threat reports and owns
// the domain lists
package host

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/pattern"
	"gitlab.com/phishker/store"
)

// Notifier shows a notification to the user
type Notifier func(title, message string)

// LogNotifier writes notifications to the log
func LogNotifier(title, message string) {
	log.Info().Str("title", title).Msg(message)
}

// Service handles threat intake, domain checks and list management
type Service struct {
	lists    *store.Lists
	counters *store.Counters
	threats  *store.Threats
	matcher  *pattern.Matcher
	notify   Notifier
	router   *gin.Engine
}

// New service over an initialized store
func New(s *store.Store, notify Notifier) *Service {
	if notify == nil {
		notify = LogNotifier
	}
	svc := &Service{
		lists:    s.Lists(),
		counters: s.Counters(),
		threats:  s.Threats(),
		matcher:  pattern.New(),
		notify:   notify,
	}
	svc.router = svc.routes()
	return svc
}

// Handler for the service routes
func (s *Service) Handler() http.Handler {
	return s.router
}

func (s *Service) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.POST("/threats", s.handleThreat)
	router.GET("/threats", s.listThreats)
	router.GET("/check", s.checkDomain)
	router.GET("/stats", s.stats)

	lists := router.Group("/lists/:name", validList())
	lists.GET("", s.getList)
	lists.PUT("", s.setList)
	lists.POST("", s.addToList)
	lists.DELETE("/:domain", s.removeFromList)
	return router
}

// Serve on addr until ctx is done
func (s *Service) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("host service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func validList() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.ValidList(c.Param("name")) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": store.ErrUnknownList.Error()})
			return
		}
		c.Next()
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrUnknownList), errors.Is(err, store.ErrDomainNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidDomain), errors.Is(err, store.ErrPublicSuffix):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicateDomain):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// handleThreat records a report and blocks its domain the first time it is
// seen
func (s *Service) handleThreat(c *gin.Context) {
	report := &phishk.Report{}
	if err := c.ShouldBindJSON(report); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if report.Action != phishk.ReportAction || report.Data == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unsupported action"})
		return
	}

	domain := ExtractDomain(report.Data.URL)
	if _, err := s.threats.Add(domain, report); err != nil {
		abortWithError(c, err)
		return
	}

	// only the report that blocks the domain counts it
	added, err := s.lists.AddIfMissing(store.Blacklist, domain)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if added {
		if _, err := s.counters.Incr(store.ThreatCount); err != nil {
			abortWithError(c, err)
			return
		}
		s.notify("Threat Detected", fmt.Sprintf("%s has been blocked for your protection.", domain))
	}

	c.JSON(http.StatusOK, gin.H{"domain": domain, "blocked": added})
}

func (s *Service) listThreats(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	records, err := s.threats.List(limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// checkDomain counts the check and classifies the url's domain
func (s *Service) checkDomain(c *gin.Context) {
	uri := c.Query("url")
	if uri == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	if _, err := s.counters.Incr(store.SitesChecked); err != nil {
		abortWithError(c, err)
		return
	}

	checker, err := s.checker()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, checker.Check(uri))
}

func (s *Service) checker() (*DomainChecker, error) {
	blocked, err := s.lists.Get(store.Blacklist)
	if err != nil {
		return nil, err
	}
	trusted, err := s.lists.Get(store.Whitelist)
	if err != nil {
		return nil, err
	}

	checker := NewDomainChecker(s.matcher)
	checker.AddDomains(blocked, StatusBlocked)
	checker.AddDomains(trusted, StatusTrusted)
	return checker, nil
}

func (s *Service) stats(c *gin.Context) {
	all, err := s.counters.All()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

type listBody struct {
	Domains []string `json:"domains"`
}

type domainBody struct {
	Domain string `json:"domain" binding:"required"`
}

func (s *Service) getList(c *gin.Context) {
	name := c.Param("name")
	var domains []string
	var err error
	if q := c.Query("q"); q != "" {
		domains, err = s.lists.Search(name, q)
	} else {
		domains, err = s.lists.Get(name)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody{Domains: domains})
}

func (s *Service) setList(c *gin.Context) {
	body := &listBody{}
	if err := c.ShouldBindJSON(body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lists.Set(c.Param("name"), body.Domains); err != nil {
		abortWithError(c, err)
		return
	}
	s.getList(c)
}

func (s *Service) addToList(c *gin.Context) {
	body := &domainBody{}
	if err := c.ShouldBindJSON(body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lists.Add(c.Param("name"), body.Domain); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Service) removeFromList(c *gin.Context) {
	if err := s.lists.Remove(c.Param("name"), c.Param("domain")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
