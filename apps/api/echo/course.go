package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt, resolve echo.MiddlewareFunc,
	svc *course.Service,
	validate *validator.Validate,
) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)

	authed := cg.Group("", jwt, resolve)
	authed.POST("", api.create, adminMiddleware())
	authed.PUT("/:id", api.update, adminMiddleware())
	authed.DELETE("/:id", api.destroy, adminMiddleware())
	authed.POST("/:id/enroll", api.enroll)

	sg := g.Group("/sessions", jwt, resolve)
	sg.GET("", api.querySessions)
	sg.POST("", api.scheduleSession, adminMiddleware())
	sg.DELETE("/:id", api.destroySession, adminMiddleware())
}

func (api courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api courseApi) create(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var nc course.NewCourse
	if err := ctx.Bind(&nc); err != nil {
		return err
	}
	if err := nc.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), nc, ident.ID)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api courseApi) update(ctx echo.Context) error {
	var uc course.UpdateCourse
	if err := ctx.Bind(&uc); err != nil {
		return err
	}
	if err := uc.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), uc)
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "course deleted"})
}

// enroll records the calling student on the course roster. Tokens that do not
// resolve to a student record cannot enroll.
func (api courseApi) enroll(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	enrollments, err := api.svc.Enroll(ctx.Request().Context(), ident.ID, ctx.Param("id"))
	if err != nil {
		switch origErr := errors.Cause(err); origErr {
		case course.ErrCourseNotFound, identity.ErrNotFound:
			return errHttpNotFound
		default:
			if _, ok := origErr.(*core.ValidationError); ok {
				return err
			}
			return errors.Wrap(err, "enrolling student")
		}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api courseApi) querySessions(ctx echo.Context) error {
	sessions, err := api.svc.QuerySessions(ctx.Request().Context(), ctx.QueryParam("course_id"))
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api courseApi) scheduleSession(ctx echo.Context) error {
	var ns course.NewLiveSession
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	if err := ns.Validate(api.validate); err != nil {
		return err
	}

	session, err := api.svc.ScheduleSession(ctx.Request().Context(), ns)
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "scheduling session")
	}
	return ctx.JSON(http.StatusCreated, session)
}

func (api courseApi) destroySession(ctx echo.Context) error {
	if err := api.svc.DeleteSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == course.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "session deleted"})
}
