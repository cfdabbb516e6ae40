package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/user"
)

const fallbackContentType = "application/octet-stream"

type attachmentApi struct {
	svc    attachment.Service
	usrSvc user.Service
}

func registerAttachmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attachment.Service, usrSvc user.Service) {
	api := attachmentApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("/attachments", jwt)
	ag.POST("", api.upload)
	ag.GET("/:id", api.retrieve)
	ag.GET("/:id/data", api.data)
}

func (api *attachmentApi) upload(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	contentType := file.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = fallbackContentType
	}

	att, err := api.svc.Create(usr, file.Filename, contentType, src)
	if err != nil {
		return errors.Wrap(err, "creating attachment")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attachmentApi) retrieve(ctx echo.Context) error {
	att, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attachmentApi) data(ctx echo.Context) error {
	att, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	data, err := api.svc.Blob(att.ID)
	if err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+att.Name+`"`)
	return ctx.Blob(http.StatusOK, att.ContentType, data)
}
