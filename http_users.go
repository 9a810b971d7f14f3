package identity

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// SessionResolver resolves the authenticated user for a request, nil
// when the request carries no valid session.
type SessionResolver func(c *fiber.Ctx) (*User, error)

// UpdateUserPayload is the PATCH body for profile updates. Every field
// is optional; zero values are not written.
type UpdateUserPayload struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	Image                string   `json:"image"`
	Company              string   `json:"company"`
	ReferralSource       string   `json:"referral_source"`
	OnboardingCategories []string `json:"onboarding_categories"`
	GraphNavigation      string   `json:"graph_navigation"`
}

// Validate will run validation rules
func (p UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
		validation.Field(&p.Image, is.URL),
	)
}

// UsersControllerConfig configures the users controller.
type UsersControllerConfig struct {
	Debug  bool
	Logger Logger
}

// UsersController serves the profile update endpoint.
type UsersController struct {
	config   UsersControllerConfig
	store    *Adapter
	sessions SessionResolver
	activity ActivitySink
}

// NewUsersController creates the users controller.
func NewUsersController(store *Adapter, sessions SessionResolver, sink ActivitySink, cfg UsersControllerConfig) *UsersController {
	return &UsersController{
		config:   cfg,
		store:    store,
		sessions: sessions,
		activity: normalizeActivitySink(sink),
	}
}

// RegisterRoutes mounts the user routes. All methods are claimed so
// unsupported verbs answer 405 instead of 404.
func (u *UsersController) RegisterRoutes(app *fiber.App) {
	app.All("/api/users/:userID", u.Update)
}

// Update applies a partial profile update and reports whether any of
// the onboarding-relevant fields changed.
func (u *UsersController) Update(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPatch {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"message": "method not allowed",
		})
	}

	sessionUser, err := u.sessions(c)
	if err != nil || sessionUser == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "not authenticated",
		})
	}

	userID, err := uuid.Parse(c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid user id",
		})
	}

	if sessionUser.ID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "forbidden",
		})
	}

	payload := UpdateUserPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	if u.config.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	ctx := c.UserContext()

	existing, err := u.store.GetUser(ctx, userID)
	if err != nil {
		return u.respondError(c, err)
	}
	if existing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "user not found",
		})
	}

	changed := trackedFieldsChanged(existing, payload)

	update := &User{
		ID:                   userID,
		Name:                 payload.Name,
		Email:                payload.Email,
		Image:                payload.Image,
		Company:              payload.Company,
		ReferralSource:       payload.ReferralSource,
		OnboardingCategories: payload.OnboardingCategories,
		GraphNavigation:      payload.GraphNavigation,
	}

	updated, err := u.store.UpdateUser(ctx, update)
	if err != nil {
		return u.respondError(c, err)
	}

	if changed {
		_ = u.activity.Record(ctx, ActivityEvent{
			EventType: ActivityEventUserUpdated,
			UserID:    updated.ID.String(),
			Metadata: map[string]any{
				"name":                  updated.Name,
				"company":               updated.Company,
				"referral_source":       updated.ReferralSource,
				"onboarding_categories": updated.OnboardingCategories,
			},
		})
	}

	// legacy response key kept for client compatibility
	return c.JSON(fiber.Map{"typebots": updated})
}

func (u *UsersController) respondError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	return c.Status(richErr.Code).JSON(fiber.Map{
		"message":   richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// trackedFieldsChanged reports whether the update touches a field that
// feeds onboarding analytics. Cosmetic fields like the avatar do not
// count.
func trackedFieldsChanged(existing *User, payload UpdateUserPayload) bool {
	if payload.Name != "" && payload.Name != existing.Name {
		return true
	}
	if payload.Company != "" && payload.Company != existing.Company {
		return true
	}
	if payload.ReferralSource != "" && payload.ReferralSource != existing.ReferralSource {
		return true
	}
	if payload.OnboardingCategories != nil && !equalStringSlices(payload.OnboardingCategories, existing.OnboardingCategories) {
		return true
	}
	return false
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
