package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carnavalia/catalog-api/internal/api/metrics"
	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

// entityRequest is a validated request body that maps onto a catalogue entity.
type entityRequest[T domain.Entity] interface {
	toEntity() T
}

// CatalogHandler serves list/get/create/update/delete for one entity kind.
type CatalogHandler[T domain.Entity, R entityRequest[T]] struct {
	kind    string
	service ports.CatalogService[T]
	filters []string
	// onCreate runs on a new entity before it is stored.
	onCreate func(c echo.Context, entity T) error
	// onUpdate sees the stored entity and its replacement before the write.
	onUpdate func(c echo.Context, current, next T) error
}

type listResponse[T domain.Entity] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func newCatalogHandler[T domain.Entity, R entityRequest[T]](kind string, service ports.CatalogService[T], filters ...string) *CatalogHandler[T, R] {
	return &CatalogHandler[T, R]{kind: kind, service: service, filters: filters}
}

// List handles GET /api/v1/<kind>. The first non-empty filter query
// parameter (e.g. ?contest_id=) restricts results to that parent.
func (h *CatalogHandler[T, R]) List(c echo.Context) error {
	page, limit := pageParams(c)
	filter := ports.ListFilter{Page: page, Limit: limit}
	for _, field := range h.filters {
		if v := c.QueryParam(field); v != "" {
			filter.ParentField, filter.ParentID = field, v
			break
		}
	}

	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[T]{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /api/v1/<kind>/:id.
func (h *CatalogHandler[T, R]) Get(c echo.Context) error {
	entity, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entity)
}

// Create handles POST /api/v1/<kind>.
func (h *CatalogHandler[T, R]) Create(c echo.Context) error {
	entity, err := h.decode(c)
	if err != nil {
		return err
	}
	if h.onCreate != nil {
		if err := h.onCreate(c, entity); err != nil {
			return err
		}
	}
	created, err := h.service.Create(c.Request().Context(), entity)
	if err != nil {
		return err
	}
	metrics.CatalogWritesTotal.WithLabelValues(h.kind, "create").Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/<kind>/:id. The body replaces the stored entity.
func (h *CatalogHandler[T, R]) Update(c echo.Context) error {
	entity, err := h.decode(c)
	if err != nil {
		return err
	}
	ctx, id := c.Request().Context(), c.Param("id")
	if h.onUpdate != nil {
		current, err := h.service.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := h.onUpdate(c, current, entity); err != nil {
			return err
		}
	}
	updated, err := h.service.Update(ctx, id, entity)
	if err != nil {
		return err
	}
	metrics.CatalogWritesTotal.WithLabelValues(h.kind, "update").Inc()
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/<kind>/:id.
func (h *CatalogHandler[T, R]) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.CatalogWritesTotal.WithLabelValues(h.kind, "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler[T, R]) decode(c echo.Context) (T, error) {
	var (
		req  R
		zero T
	)
	if err := bindAndValidate(c, &req); err != nil {
		return zero, err
	}
	return req.toEntity(), nil
}

// ── Constructors per kind ────────────────────────────────────────────────────

func NewLocalityHandler(s ports.CatalogService[*domain.Locality]) *CatalogHandler[*domain.Locality, localityRequest] {
	return newCatalogHandler[*domain.Locality, localityRequest](domain.KindLocalities, s)
}

func NewContestHandler(s ports.CatalogService[*domain.Contest]) *CatalogHandler[*domain.Contest, contestRequest] {
	return newCatalogHandler[*domain.Contest, contestRequest](domain.KindContests, s, "locality_id")
}

func NewEditionHandler(s ports.CatalogService[*domain.Edition]) *CatalogHandler[*domain.Edition, editionRequest] {
	return newCatalogHandler[*domain.Edition, editionRequest](domain.KindEditions, s, "contest_id")
}

func NewGroupHandler(s ports.CatalogService[*domain.Group]) *CatalogHandler[*domain.Group, groupRequest] {
	return newCatalogHandler[*domain.Group, groupRequest](domain.KindGroups, s, "locality_id")
}

func NewPersonHandler(s ports.CatalogService[*domain.Person]) *CatalogHandler[*domain.Person, personRequest] {
	return newCatalogHandler[*domain.Person, personRequest](domain.KindPersons, s, "locality_id")
}

func NewMembershipHandler(s ports.CatalogService[*domain.Membership]) *CatalogHandler[*domain.Membership, membershipRequest] {
	return newCatalogHandler[*domain.Membership, membershipRequest](domain.KindMemberships, s, "group_id", "person_id", "edition_id")
}

// NewCommentHandler records the authenticated username as the comment author.
// The author is fixed at creation; only the author or a user manager may edit.
func NewCommentHandler(s ports.CatalogService[*domain.Comment]) *CatalogHandler[*domain.Comment, commentRequest] {
	h := newCatalogHandler[*domain.Comment, commentRequest](domain.KindComments, s, "group_id", "edition_id")
	h.onCreate = func(c echo.Context, comment *domain.Comment) error {
		p, err := currentPrincipal(c)
		if err != nil {
			return err
		}
		comment.Author = p.Username
		return nil
	}
	h.onUpdate = func(c echo.Context, current, next *domain.Comment) error {
		p, err := currentPrincipal(c)
		if err != nil {
			return err
		}
		if current.Author != p.Username && !p.HasAuthority(domain.AuthorityUsersManage) {
			return domain.ErrForbidden
		}
		next.Author = current.Author
		return nil
	}
	return h
}

func NewImageHandler(s ports.CatalogService[*domain.Image]) *CatalogHandler[*domain.Image, imageRequest] {
	return newCatalogHandler[*domain.Image, imageRequest](domain.KindImages, s, "group_id", "edition_id")
}

func NewVideoHandler(s ports.CatalogService[*domain.Video]) *CatalogHandler[*domain.Video, videoRequest] {
	return newCatalogHandler[*domain.Video, videoRequest](domain.KindVideos, s, "group_id", "edition_id")
}

func NewPrizeHandler(s ports.CatalogService[*domain.Prize]) *CatalogHandler[*domain.Prize, prizeRequest] {
	return newCatalogHandler[*domain.Prize, prizeRequest](domain.KindPrizes, s, "group_id", "edition_id")
}
