package services

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	goContext "context"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/cognify-health/cognify_api/shared"
)

// RateLimitService keeps fixed-window counters in redis, one key per
// identifier and endpoint type. A full window earns a block key with its own
// TTL; both expire on their own so there is no cleanup job.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"session_create": {
			EndpointType: "session_create",
			MaxRequests:  30,
			WindowSize:   15 * time.Minute,
			BlockTime:    30 * time.Minute,
			Description:  "Exercise session creation rate limit",
			IsActive:     true,
		},
		"session_event": {
			EndpointType: "session_event",
			MaxRequests:  1200,
			WindowSize:   time.Minute,
			BlockTime:    5 * time.Minute,
			Description:  "In-session event rate limit (flips, swaps, entries)",
			IsActive:     true,
		},
		"result_submit": {
			EndpointType: "result_submit",
			MaxRequests:  30,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Result submission retry rate limit",
			IsActive:     true,
		},
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

// RateLimitInfo reports one decision's remaining budget.
type RateLimitInfo struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

func (svc *RateLimitService) IsAllowed(identifier, endpointType string) (bool, *RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, &RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	ctx := goContext.Background()
	blockKey := fmt.Sprintf("ratelimit:block:%s:%s", endpointType, identifier)
	countKey := fmt.Sprintf("ratelimit:count:%s:%s", endpointType, identifier)

	blocked, err := svc.redisSvc.Exists(ctx, blockKey)
	if err != nil {
		return false, nil, err
	}
	if blocked {
		ttl, _ := svc.redisSvc.TTL(ctx, blockKey)
		return false, &RateLimitInfo{Allowed: false, Remaining: 0, ResetIn: ttl}, nil
	}

	count, err := svc.redisSvc.Increment(ctx, countKey)
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, countKey, config.WindowSize); err != nil {
			return false, nil, err
		}
	}

	if count > int64(config.MaxRequests) {
		if err := svc.redisSvc.Set(ctx, blockKey, "1", config.BlockTime); err != nil {
			return false, nil, err
		}
		return false, &RateLimitInfo{Allowed: false, Remaining: 0, ResetIn: config.BlockTime}, nil
	}

	ttl, _ := svc.redisSvc.TTL(ctx, countKey)
	return true, &RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetIn:   ttl,
	}, nil
}

// RateLimit creates a rate limiting middleware for specific endpoint types
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.getIdentifier(c, endpointType)

		allowed, info, err := svc.IsAllowed(identifier, endpointType)
		if err != nil {
			log.Printf("Rate limit check error for %s (%s): %v", endpointType, identifier, err)
			// Continue with request on error to avoid blocking users due to system issues
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, endpointType, info)
		}

		return c.Next()
	}
}

// IPRateLimit applies general rate limiting by IP address
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return svc.RateLimit("api_general")
}

func (svc *RateLimitService) getIdentifier(c *fiber.Ctx, endpointType string) string {
	switch endpointType {
	case "session_event", "result_submit":
		if sessionID := c.Params("sessionId"); sessionID != "" {
			return sessionID
		}
	}

	userID := c.Locals(shared.UserID)
	if userID != nil {
		if userIDStr, ok := userID.(string); ok && userIDStr != "" {
			return userIDStr
		}
	}
	return getClientIP(c)
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetIn > 0 {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(info.ResetIn).Unix(), 10))
		if !info.Allowed {
			c.Set("Retry-After", strconv.Itoa(int(info.ResetIn.Seconds())))
		}
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *RateLimitInfo) error {
	message := svc.getRateLimitMessage(endpointType)

	response := map[string]interface{}{
		"error":   "Rate limit exceeded",
		"message": message,
	}
	if info != nil && info.ResetIn > 0 {
		response["retry_after"] = int(info.ResetIn.Seconds())
	}

	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, response)
}

func (svc *RateLimitService) getRateLimitMessage(endpointType string) string {
	messages := map[string]string{
		"session_create": "Too many sessions started. Please try again later.",
		"session_event":  "Too many game events. Please slow down.",
		"result_submit":  "Too many submission retries. Please try again later.",
		"api_general":    "Too many requests. Please slow down.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
