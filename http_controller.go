package identity

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"

	"github.com/goliatone/go-identity/ratelimit"
)

// rateLimitedLocal tags a request whose caller exceeded the sign-in
// rate limit. The tag travels with the request so the sign-in pipeline
// can surface it as ErrRateLimited instead of the transport dropping
// the request outright.
const rateLimitedLocal = "identity:rate_limited"

// AuthControllerConfig configures the auth entry controller.
type AuthControllerConfig struct {
	// PathPrefix for routes (default: "/api/auth")
	PathPrefix string

	// TestMode serves a fixed mock session so browser-driven test
	// suites can sign in without a provider round trip. It is a
	// construction-time decision, never toggled at runtime.
	TestMode bool

	// TestUser is the user the mock session reports. Required when
	// TestMode is set.
	TestUser *User

	Debug  bool
	Logger Logger
}

// AuthController fronts the auth library's catch-all handler. It owns
// the concerns the library does not: liveness probes, the email
// sign-in rate limit, and the test-mode session mock.
type AuthController struct {
	config  AuthControllerConfig
	next    fiber.Handler
	limiter ratelimit.Limiter
	logger  Logger
}

// NewAuthController creates the controller wrapping next, the auth
// library's handler. A nil limiter disables the sign-in gate.
func NewAuthController(next fiber.Handler, limiter ratelimit.Limiter, cfg AuthControllerConfig) *AuthController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/api/auth"
	}

	return &AuthController{
		config:  cfg,
		next:    next,
		limiter: limiter,
		logger:  normalizeLogger(cfg.Logger),
	}
}

// RegisterRoutes mounts the catch-all auth route.
func (a *AuthController) RegisterRoutes(app *fiber.App) {
	app.All(a.config.PathPrefix+"/*", a.Handle)
}

// Handle dispatches any method under the auth prefix.
func (a *AuthController) Handle(c *fiber.Ctx) error {
	// health checkers probe with HEAD; answer before any auth logic
	if c.Method() == fiber.MethodHead {
		return c.SendStatus(fiber.StatusOK)
	}

	if a.config.TestMode && c.Method() == fiber.MethodGet && c.Path() == a.config.PathPrefix+"/session" {
		return a.mockSession(c)
	}

	if c.Method() == fiber.MethodPost && c.Path() == a.config.PathPrefix+"/signin/email" {
		if err := a.checkRateLimit(c); err != nil {
			return err
		}
	}

	return a.next(c)
}

// mockSession returns the fixed session payload for test mode.
func (a *AuthController) mockSession(c *fiber.Ctx) error {
	user := a.config.TestUser
	if user == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "test mode enabled without a test user",
		})
	}

	payload := fiber.Map{
		"user":    user,
		"expires": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}

	if a.config.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	return c.JSON(payload)
}

// checkRateLimit consults the limiter keyed by caller IP and tags the
// request when the caller is over the limit. The request still flows
// to the auth library so the sign-in pipeline can reject it with the
// rate-limited error code.
func (a *AuthController) checkRateLimit(c *fiber.Ctx) error {
	if a.limiter == nil {
		return nil
	}

	result, err := a.limiter.Allow(c.UserContext(), c.IP())
	if err != nil {
		// the gate should never take sign-in down with it
		a.logger.Error("rate limit check failed: %s", err)
		return nil
	}

	if !result.Allowed {
		a.logger.Info("rate limited email sign-in from %s", c.IP())
		c.Locals(rateLimitedLocal, true)
	}

	return nil
}

// RateLimited reports whether the request was tagged by the sign-in
// rate limit gate.
func RateLimited(c *fiber.Ctx) bool {
	tagged, _ := c.Locals(rateLimitedLocal).(bool)
	return tagged
}
