package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

type studentApi struct {
	svc      student.Service
	gradeSvc grade.Service
	pager    pager
	validate *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	pgr pager,
	svc student.Service,
	gradeSvc grade.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:      svc,
		gradeSvc: gradeSvc,
		pager:    pgr,
		validate: validate,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, staffMiddleware())
	sg.POST("", api.create, adminMiddleware())

	// detail endpoints
	dg := sg.Group("/:id", api.ctxStudentMiddleware())
	dg.GET("", api.retrieve)
	dg.GET("/report", api.report)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.Create(rctx, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) query(ctx echo.Context) error {
	spec, err := api.pager.bindSpec(ctx, "student", student.Fields)
	if err != nil {
		return err
	}
	students, total, err := api.svc.Query(ctx.Request().Context(), spec)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, query.PageOf(students, total, spec))
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) report(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	rep, err := api.gradeSvc.StudentReport(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "computing student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	rctx := ctx.Request().Context()
	if err = data.Validate(rctx, s, api.validate, api.svc); err != nil {
		return err
	}

	s, err = api.svc.Update(rctx, s, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := getContextObject[student.Student](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	if err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ctxStudentMiddleware loads the `:id` student, visible to staff and to the student's own
// user account.
func (api *studentApi) ctxStudentMiddleware() echo.MiddlewareFunc {
	return objectMiddleware(func(ctx echo.Context, id int) (student.Student, error) {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return student.Student{}, errors.Wrap(err, "getting context claims")
		}
		s, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return student.Student{}, err
		}
		if claims.IsAdmin || claims.IsTeacher || (s.UserID != nil && *s.UserID == claims.UserID()) {
			return s, nil
		}
		return student.Student{}, student.ErrNotFound
	}, student.ErrNotFound)
}
