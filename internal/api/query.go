// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"github.com/dgraph-io/ristretto"
	"github.com/gin-gonic/gin"
	"github.com/nbutton23/zxcvbn-go"
	"net/http"
	"passguard/pkg/breachdir"
	"passguard/pkg/generator"
	"passguard/pkg/hibp"
	"passguard/pkg/strength"
	"time"
)

// rangeTTL bounds how long a cached hash range is reused. Ranges hold
// only public breach data, never anything derived from a single secret.
const rangeTTL = 30 * time.Minute

type queryApi struct {
	client     *hibp.Client
	aggregator *breachdir.Aggregator
	generator  *generator.Generator
	cache      *ristretto.Cache
}

// RegisterQueryApi wires the check and generate endpoints onto the
// versioned group using cfg for upstream URLs, timeouts and cache
// sizing. The check endpoints live under /check; generate sits at the
// group root.
func RegisterQueryApi(group *gin.RouterGroup, cfg Config) error {
	cfg.applyDefaults()

	client := hibp.NewClient()
	if cfg.HibpURL != "" {
		client.BaseURL = cfg.HibpURL
	}

	xon := breachdir.NewXposedOrNot()
	if cfg.XonURL != "" {
		xon.BaseURL = cfg.XonURL
	}
	lc := breachdir.NewLeakCheck()
	if cfg.LeakCheckURL != "" {
		lc.BaseURL = cfg.LeakCheckURL
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     cfg.CacheMB << 20,
		BufferItems: 64,
	})
	if err != nil {
		return err
	}

	q := &queryApi{
		client:     client,
		aggregator: breachdir.NewAggregator(time.Duration(cfg.SourceTimeout)*time.Second, xon, lc),
		generator:  generator.New(),
		cache:      cache,
	}

	check := group.Group("/check")
	check.POST("/password", q.checkPassword)
	check.POST("/hash", q.checkHash)
	check.POST("/email", q.checkEmail)
	group.POST("/generate", q.generate)

	return nil
}

// rangeFor serves a hash range from the cache or the upstream API. The
// cache key is the 5 character prefix, which is also all that ever goes
// upstream.
func (q *queryApi) rangeFor(c *gin.Context, prefix string) ([]hibp.Entry, error) {
	if cached, ok := q.cache.Get(prefix); ok {
		if entries, ok := cached.([]hibp.Entry); ok {
			return entries, nil
		}
	}

	entries, err := q.client.Range(c.Request.Context(), prefix)
	if err != nil {
		return nil, err
	}

	q.cache.SetWithTTL(prefix, entries, int64(len(entries))*48, rangeTTL)
	return entries, nil
}

func (q *queryApi) checkPassword(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	digest := hibp.Sum(req.Password)
	entries, err := q.rangeFor(c, digest.Prefix())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	result := hibp.Match(entries, digest)
	c.JSON(http.StatusOK, queryResponse{
		Pwned:    result.Found,
		Count:    result.Count,
		Strength: strengthOf(req.Password),
	})
}

func (q *queryApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	digest, err := hibp.ParseDigest(req.Hash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := q.rangeFor(c, digest.Prefix())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	result := hibp.Match(entries, digest)
	c.JSON(http.StatusOK, queryResponse{Pwned: result.Found, Count: result.Count})
}

func (q *queryApi) checkEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := q.aggregator.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, breachdir.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, breachdir.ErrAllSourcesUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, emailResponse{Exposed: report.Total > 0, Report: report})
}

func (q *queryApi) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := generator.Config{
		Length: req.Length,
		Classes: generator.ClassSet{
			Lower:  req.Lowercase == nil || *req.Lowercase,
			Upper:  req.Uppercase == nil || *req.Uppercase,
			Digit:  req.Digits == nil || *req.Digits,
			Symbol: req.Symbols == nil || *req.Symbols,
		},
	}
	if cfg.Length == 0 {
		cfg.Length = 16
	}

	password, err := q.generator.Generate(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		Password: password,
		Length:   len(password),
		Strength: strengthOf(password),
	})
}

// strengthOf pairs the local analyzer report with zxcvbn's crack time
// estimate; the two models disagree in interesting ways and the UI shows
// both.
func strengthOf(password string) *passwordStrength {
	report := strength.Analyze(password)

	warnings := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		warnings = append(warnings, w.Message())
	}

	entropy := zxcvbn.PasswordStrength(password, nil)
	return &passwordStrength{
		Score:            report.Score,
		Label:            report.Label,
		Entropy:          report.Entropy,
		Warnings:         warnings,
		CrackTimeDisplay: entropy.CrackTimeDisplay,
	}
}
