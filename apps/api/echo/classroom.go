package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type classroomApi struct {
	svc    classroom.Service
	usrSvc user.Service
}

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classroom.Service, usrSvc user.Service) {
	api := classroomApi{svc: svc, usrSvc: usrSvc}

	cg := g.Group("/classrooms", jwt)
	cg.GET("", api.list)
	cg.POST("", api.create)
	cg.PUT("", api.join)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/topics", api.createTopic)
	dg.GET("/items", api.listItems)
	dg.POST("/items", api.createItem)

	ig := dg.Group("/items/:itemID")
	ig.GET("", api.retrieveItem)
	ig.PUT("", api.updateItem)
	ig.DELETE("", api.destroyItem)
	ig.GET("/submissions", api.listSubmissions)
	ig.GET("/submissions/@me", api.ownSubmission)
	ig.POST("/submissions/@me", api.createSubmission)
	ig.PUT("/submissions/@me", api.updateOwnSubmission)
	ig.PUT("/submissions/:subID", api.gradeSubmission)
	ig.POST("/comments", api.commentItem)
	ig.POST("/submissions/:subID/comments", api.commentSubmission)
}

// Classroom handlers

func (api *classroomApi) list(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	classrooms, err := api.svc.QueryForUser(usr)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	summaries := make([]classroom.Summary, 0, len(classrooms))
	for _, c := range classrooms {
		summaries = append(summaries, c.Summarize())
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *classroomApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Create(usr, data)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	return ctx.JSON(http.StatusCreated, c.DetailFor(usr))
}

func (api *classroomApi) join(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.JoinClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClassroom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.JoinByCode(usr, data.Code)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.DetailFor(usr))
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	c, err := api.svc.GetByID(usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.DetailFor(usr))
}

func (api *classroomApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}

	c, err := api.svc.Update(usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.DetailFor(usr))
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(usr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Topic handlers

func (api *classroomApi) createTopic(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	topic, err := api.svc.CreateTopic(usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, topic)
}

// Item handlers

func (api *classroomApi) listItems(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	c, err := api.svc.GetByID(usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.VisibleItems(usr))
}

func (api *classroomApi) createItem(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	it, err := api.svc.CreateItem(usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, it)
}

func (api *classroomApi) retrieveItem(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	it, err := api.svc.GetItem(usr, ctx.Param("id"), ctx.Param("itemID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *classroomApi) updateItem(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}

	it, err := api.svc.UpdateItem(usr, ctx.Param("id"), ctx.Param("itemID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *classroomApi) destroyItem(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteItem(usr, ctx.Param("id"), ctx.Param("itemID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Submission handlers

func (api *classroomApi) listSubmissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	submissions, err := api.svc.ListSubmissions(usr, ctx.Param("id"), ctx.Param("itemID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, submissions)
}

func (api *classroomApi) ownSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	submission, err := api.svc.GetOwnSubmission(usr, ctx.Param("id"), ctx.Param("itemID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, submission)
}

func (api *classroomApi) createSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	submission, err := api.svc.CreateSubmission(usr, ctx.Param("id"), ctx.Param("itemID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, submission)
}

func (api *classroomApi) updateOwnSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	submission, err := api.svc.UpdateOwnSubmission(usr, ctx.Param("id"), ctx.Param("itemID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, submission)
}

func (api *classroomApi) gradeSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	submission, err := api.svc.GradeSubmission(usr, ctx.Param("id"), ctx.Param("itemID"), ctx.Param("subID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, submission)
}

// Comment handlers

func (api *classroomApi) commentItem(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	comment, err := api.svc.CommentItem(usr, ctx.Param("id"), ctx.Param("itemID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, comment)
}

func (api *classroomApi) commentSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	comment, err := api.svc.CommentSubmission(usr, ctx.Param("id"), ctx.Param("itemID"), ctx.Param("subID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, comment)
}
