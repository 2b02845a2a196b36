package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core/identity"
)

type authApi struct {
	svc      *identity.Service
	tokenSvc *TokenService
	validate *validator.Validate
}

func registerAuthAPI(
	g *echo.Group,
	jwt, resolve echo.MiddlewareFunc,
	svc *identity.Service,
	tokenSvc *TokenService,
	validate *validator.Validate,
) {
	api := authApi{svc: svc, tokenSvc: tokenSvc, validate: validate}

	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)

	authed := ag.Group("", jwt, resolve)
	authed.GET("/me", api.profile)
	authed.PUT("/me", api.updateProfile)
	authed.POST("/register-admin", api.registerAdmin, adminMiddleware())

	admins := authed.Group("/admins", adminMiddleware())
	admins.GET("", api.queryAdmins)
	admins.PUT("/:id/password", api.resetAdminPassword)
	admins.DELETE("/:id", api.deleteAdmin)
}

// LoginRequest is what clients authenticate with.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a fresh bearer token plus the authenticated identity.
type AuthResponse struct {
	Token string            `json:"token"`
	User  identity.Identity `json:"user"`
}

func (api authApi) register(ctx echo.Context) error {
	var ns identity.NewStudent
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	if err := ns.Validate(api.validate, api.svc); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if _, err := api.svc.Register(reqCtx, ns); err != nil {
		return errors.Wrap(err, "registering student")
	}

	// registering doubles as the first login
	ident, err := api.svc.Authenticate(reqCtx, ns.Email, ns.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating new student")
	}
	token, err := api.tokenSvc.Generate(api.tokenSvc.GetClaims(ident))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, AuthResponse{Token: token, User: ident})
}

func (api authApi) login(ctx echo.Context) error {
	var req LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := api.validate.Struct(&req); err != nil {
		return err
	}

	ident, err := api.svc.Authenticate(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Cause(err) == identity.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating user")
	}
	token, err := api.tokenSvc.Generate(api.tokenSvc.GetClaims(ident))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, AuthResponse{Token: token, User: ident})
}

func (api authApi) profile(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ident)
}

// updateProfile edits the calling student's own record. An empty password
// field leaves the stored credentials untouched.
func (api authApi) updateProfile(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var us identity.UpdateStudent
	if err := ctx.Bind(&us); err != nil {
		return err
	}
	if err := us.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.UpdateStudent(ctx.Request().Context(), ident.ID, us)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api authApi) registerAdmin(ctx echo.Context) error {
	var na identity.NewAdmin
	if err := ctx.Bind(&na); err != nil {
		return err
	}
	if err := na.Validate(api.validate, api.svc); err != nil {
		return err
	}

	adm, err := api.svc.CreateAdmin(ctx.Request().Context(), na)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	return ctx.JSON(http.StatusCreated, adm)
}

func (api authApi) queryAdmins(ctx echo.Context) error {
	admins, err := api.svc.QueryAdmins(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying admins")
	}
	return ctx.JSON(http.StatusOK, admins)
}

func (api authApi) resetAdminPassword(ctx echo.Context) error {
	var ap identity.AdminPassword
	if err := ctx.Bind(&ap); err != nil {
		return err
	}
	if err := ap.Validate(api.validate); err != nil {
		return err
	}

	adm, err := api.svc.ResetAdminPassword(ctx.Request().Context(), ctx.Param("id"), ap.Password)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resetting admin password")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api authApi) deleteAdmin(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	if id == ident.ID {
		return errSelfDelete
	}

	if err := api.svc.DeleteAdmin(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting admin")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "admin deleted"})
}
