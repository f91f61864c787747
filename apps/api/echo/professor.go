package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
)

type professorApi struct {
	svc      professor.Service
	pager    pager
	validate *validator.Validate
}

func registerProfessorAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	pgr pager,
	svc professor.Service,
	validate *validator.Validate,
) {
	api := professorApi{svc: svc, pager: pgr, validate: validate}

	pg := g.Group("/professors", jwt, staffMiddleware())
	pg.GET("", api.query)
	pg.POST("", api.create, adminMiddleware())

	dg := pg.Group("/:id", objectMiddleware(func(ctx echo.Context, id int) (professor.Professor, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}, professor.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *professorApi) create(ctx echo.Context) error {
	var data professor.NewProfessor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfessor")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.validate, api.svc); err != nil {
		return err
	}

	p, err := api.svc.Create(rctx, data)
	if err != nil {
		return errors.Wrap(err, "creating professor")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *professorApi) query(ctx echo.Context) error {
	spec, err := api.pager.bindSpec(ctx, "professor", professor.Fields)
	if err != nil {
		return err
	}
	profs, total, err := api.svc.Query(ctx.Request().Context(), spec)
	if err != nil {
		return errors.Wrap(err, "querying professors")
	}
	return ctx.JSON(http.StatusOK, query.PageOf(profs, total, spec))
}

func (api *professorApi) retrieve(ctx echo.Context) error {
	p, err := getContextObject[professor.Professor](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *professorApi) update(ctx echo.Context) error {
	p, err := getContextObject[professor.Professor](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}

	var data professor.UpdateProfessor
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfessor")
	}
	rctx := ctx.Request().Context()
	if err = data.Validate(rctx, p, api.validate, api.svc); err != nil {
		return err
	}

	p, err = api.svc.Update(rctx, p, data)
	if err != nil {
		return errors.Wrap(err, "updating professor")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *professorApi) destroy(ctx echo.Context) error {
	p, err := getContextObject[professor.Professor](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	if err = api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting professor")
	}
	return ctx.NoContent(http.StatusNoContent)
}
