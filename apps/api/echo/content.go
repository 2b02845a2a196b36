package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core/content"
	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
)

type contentApi struct {
	svc      *content.Service
	validate *validator.Validate
}

func registerContentAPI(
	g *echo.Group,
	jwt, resolve echo.MiddlewareFunc,
	svc *content.Service,
	validate *validator.Validate,
) {
	api := contentApi{svc: svc, validate: validate}

	g.GET("/courses/:id/resources", api.queryCourseResources, jwt, resolve)

	rg := g.Group("/resources", jwt, resolve, adminMiddleware())
	rg.POST("", api.addResource)
	rg.DELETE("/:id", api.destroyResource)

	g.GET("/gallery", api.queryGallery)
	gg := g.Group("/gallery", jwt, resolve, adminMiddleware())
	gg.POST("", api.addImage)
	gg.DELETE("/:id", api.destroyImage)
}

// readFormFile pulls the uploaded file out of a multipart request. The MIME
// type comes from the part header, falling back to content sniffing.
func readFormFile(ctx echo.Context, field string) (name, mime string, data []byte, err error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return "", "", nil, echo.NewHTTPError(http.StatusBadRequest, field+" file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", "", nil, errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	data, err = ioutil.ReadAll(file)
	if err != nil {
		return "", "", nil, errors.Wrap(err, "reading uploaded file")
	}
	mime = fileHeader.Header.Get(echo.HeaderContentType)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return fileHeader.Filename, mime, data, nil
}

func (api contentApi) queryCourseResources(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	resources, err := api.svc.QueryCourseResources(ctx.Request().Context(), ident, ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrCourseNotFound, identity.ErrNotFound:
			return errHttpNotFound
		case content.ErrNotEnrolled:
			return echo.NewHTTPError(http.StatusForbidden, content.ErrNotEnrolled.Error())
		default:
			return errors.Wrap(err, "querying course resources")
		}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api contentApi) addResource(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	filename, mime, data, err := readFormFile(ctx, "file")
	if err != nil {
		return err
	}
	nr := content.NewResource{
		CourseID: ctx.FormValue("course_id"),
		Name:     ctx.FormValue("name"),
		MIME:     mime,
		Data:     data,
	}
	if nr.Name == "" {
		nr.Name = filename
	}
	if err := nr.Validate(api.validate); err != nil {
		return err
	}

	resource, err := api.svc.AddResource(ctx.Request().Context(), nr, ident.ID)
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding resource")
	}
	return ctx.JSON(http.StatusCreated, resource)
}

func (api contentApi) destroyResource(ctx echo.Context) error {
	if err := api.svc.DeleteResource(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == content.ErrResourceNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting resource")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "resource deleted"})
}

func (api contentApi) queryGallery(ctx echo.Context) error {
	images, err := api.svc.QueryGallery(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying gallery")
	}
	return ctx.JSON(http.StatusOK, images)
}

func (api contentApi) addImage(ctx echo.Context) error {
	filename, mime, data, err := readFormFile(ctx, "file")
	if err != nil {
		return err
	}
	ni := content.NewGalleryImage{
		Title: ctx.FormValue("title"),
		MIME:  mime,
		Data:  data,
	}
	if ni.Title == "" {
		ni.Title = filename
	}
	if err := ni.Validate(api.validate); err != nil {
		return err
	}

	image, err := api.svc.AddImage(ctx.Request().Context(), ni)
	if err != nil {
		return errors.Wrap(err, "adding gallery image")
	}
	return ctx.JSON(http.StatusCreated, image)
}

func (api contentApi) destroyImage(ctx echo.Context) error {
	if err := api.svc.DeleteImage(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == content.ErrImageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting gallery image")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "image deleted"})
}
