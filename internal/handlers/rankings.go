package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/cache"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/middleware"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RankingCacheTTL is how long ranking responses are served from cache.
// Rankings tolerate short staleness in exchange for not running the
// full scan on every request.
const RankingCacheTTL = 30 * time.Second

// parseScope reads the scope query parameter
func parseScope(c *gin.Context) (analytics.Scope, bool) {
	scope := analytics.Scope(c.DefaultQuery("scope", string(analytics.ScopeGlobal)))
	if scope != analytics.ScopeGlobal && scope != analytics.ScopeWeekly {
		util.RespondBadRequest(c, "scope must be global or weekly")
		return "", false
	}
	return scope, true
}

// serveCachedRanking serves a cached ranking response when fresh, or
// computes one and caches it. Cache failures fall through to a fresh scan.
func serveCachedRanking(c *gin.Context, key string, compute func() (gin.H, error)) {
	redisClient := cache.GetRedisClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if redisClient != nil {
		if cached, err := redisClient.Get(ctx, key); err == nil && cached != "" {
			var body gin.H
			if err := json.Unmarshal([]byte(cached), &body); err == nil {
				middleware.RecordCacheHit("rankings")
				c.JSON(http.StatusOK, body)
				return
			}
		}
		middleware.RecordCacheMiss("rankings")
	}

	body, err := compute()
	if err != nil {
		util.RespondInternalError(c, "Failed to compute rankings")
		return
	}

	if redisClient != nil {
		if payload, err := json.Marshal(body); err == nil {
			if err := redisClient.SetEx(ctx, key, string(payload), RankingCacheTTL); err != nil {
				logger.Log.Warn("Failed to cache ranking response",
					zap.String("key", key), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, body)
}

// RankUsers serves the user leaderboard
func (h *Handlers) RankUsers(c *gin.Context) {
	scope, ok := parseScope(c)
	if !ok {
		return
	}
	page, limit, skip := util.PageParams(c, 20, 100)

	key := fmt.Sprintf("rankings:users:%s:%d:%d", scope, page, limit)
	serveCachedRanking(c, key, func() (gin.H, error) {
		ranked, total, err := h.scanner.RankUsers(c.Request.Context(), scope, skip, limit)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"scope":      scope,
			"rankings":   ranked,
			"pagination": util.NewPagination(page, limit, total),
		}, nil
	})
}

// RankProjects serves the project leaderboard
func (h *Handlers) RankProjects(c *gin.Context) {
	scope, ok := parseScope(c)
	if !ok {
		return
	}
	page, limit, skip := util.PageParams(c, 20, 100)

	key := fmt.Sprintf("rankings:projects:%s:%d:%d", scope, page, limit)
	serveCachedRanking(c, key, func() (gin.H, error) {
		ranked, total, err := h.scanner.RankProjects(c.Request.Context(), scope, skip, limit)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"scope":      scope,
			"rankings":   ranked,
			"pagination": util.NewPagination(page, limit, total),
		}, nil
	})
}

// RankTags serves the tag leaderboard
func (h *Handlers) RankTags(c *gin.Context) {
	page, limit, skip := util.PageParams(c, 20, 100)

	key := fmt.Sprintf("rankings:tags:%d:%d", page, limit)
	serveCachedRanking(c, key, func() (gin.H, error) {
		ranked, total, err := h.scanner.RankTags(c.Request.Context(), skip, limit)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"rankings":   ranked,
			"pagination": util.NewPagination(page, limit, total),
		}, nil
	})
}
