package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/gamenight/planner-api/common"
	"github.com/gamenight/planner-api/common/config"
)

var timeFormat = "2006-01-02T15:04:05.000Z"

var inMemoryRateLimiter common.InMemoryRateLimiter

func redisRateLimiter(c *gin.Context, maxRequestNum int, duration int64, mark string) {
	ctx := context.Background()
	rdb := common.RDB
	key := "rateLimit:" + mark + c.ClientIP()
	listLength, err := rdb.LLen(ctx, key).Result()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, errors.Wrap(err, "redis rate limiter failed"))
		return
	}
	if listLength < int64(maxRequestNum) {
		rdb.LPush(ctx, key, time.Now().Format(timeFormat))
		rdb.Expire(ctx, key, time.Duration(duration)*time.Second)
	} else {
		oldTimeStr, _ := rdb.LIndex(ctx, key, -1).Result()
		oldTime, err := time.Parse(timeFormat, oldTimeStr)
		if err != nil {
			AbortWithError(c, http.StatusInternalServerError, errors.Wrap(err, "parse window timestamp failed"))
			return
		}
		nowTime, err := time.Parse(timeFormat, time.Now().Format(timeFormat))
		if err != nil {
			AbortWithError(c, http.StatusInternalServerError, errors.Wrap(err, "parse window timestamp failed"))
			return
		}
		if int64(nowTime.Sub(oldTime).Seconds()) < duration {
			rdb.Expire(ctx, key, time.Duration(duration)*time.Second)
			AbortWithError(c, http.StatusTooManyRequests, errors.New("Rate limit exceeded. Please try again later."))
			return
		}
		rdb.LPush(ctx, key, time.Now().Format(timeFormat))
		rdb.LTrim(ctx, key, 0, int64(maxRequestNum-1))
		rdb.Expire(ctx, key, time.Duration(duration)*time.Second)
	}
}

func memoryRateLimiter(c *gin.Context, maxRequestNum int, duration int64, mark string) {
	key := mark + c.ClientIP()
	if !inMemoryRateLimiter.Request(key, maxRequestNum, duration) {
		AbortWithError(c, http.StatusTooManyRequests, errors.New("Rate limit exceeded. Please try again later."))
	}
}

func rateLimitFactory(maxRequestNum int, duration int64, mark string) func(c *gin.Context) {
	if maxRequestNum <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if common.IsRedisEnabled() {
		return func(c *gin.Context) {
			redisRateLimiter(c, maxRequestNum, duration, mark)
		}
	}
	inMemoryRateLimiter.Init(time.Duration(duration*2) * time.Second)
	return func(c *gin.Context) {
		memoryRateLimiter(c, maxRequestNum, duration, mark)
	}
}

// GlobalAPIRateLimit limits requests per client IP across the whole API
// surface.
func GlobalAPIRateLimit() func(c *gin.Context) {
	return rateLimitFactory(config.RateLimitNum, int64(config.RateLimitWindowSec), "GA")
}
