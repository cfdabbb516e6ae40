package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type taskApi struct {
	svc    classroom.Service
	usrSvc user.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classroom.Service, usrSvc user.Service) {
	api := taskApi{svc: svc, usrSvc: usrSvc}

	tg := g.Group("/tasks", jwt)
	tg.GET("/@me", api.listMine)
}

func (api *taskApi) listMine(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	kind := classroom.TaskKind(ctx.QueryParam("type"))
	if kind == "" {
		kind = classroom.TaskToDo
	}

	tasks, err := api.svc.TasksForUser(usr, kind)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tasks)
}
