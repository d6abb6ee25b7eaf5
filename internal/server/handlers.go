package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/display"
	"github.com/tayloree/shopcli/internal/filter"
	"github.com/tayloree/shopcli/internal/logger"
	"go.uber.org/zap"
)

var errNotLoaded = echo.NewHTTPError(http.StatusServiceUnavailable, "catalog not loaded yet")

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status     string    `json:"status"`
	Categories int       `json:"categories"`
	Products   int       `json:"products"`
	LoadedAt   time.Time `json:"loadedAt"`
}

// browseQuery holds the query string of browse and facets requests.
type browseQuery struct {
	MinPrice    *float64 `validate:"omitempty,gte=0"`
	MaxPrice    *float64 `validate:"omitempty,gte=0"`
	Band        string
	Brands      []string
	RAM         []string
	Tags        []string
	MinDiscount *int `validate:"omitempty,gte=0,lte=100"`
	Sort        string
	Limit       int `validate:"gte=0"`
}

func (s *Server) handleHealth(c echo.Context) error {
	st := s.state.Load()
	if st == nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "loading"})
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:     "ok",
		Categories: len(st.snapshot.Categories),
		Products:   len(st.snapshot.Products),
		LoadedAt:   st.loadedAt,
	})
}

func (s *Server) handleCategories(c echo.Context) error {
	snap := s.Snapshot()
	if snap == nil {
		return errNotLoaded
	}
	return c.JSON(http.StatusOK, display.CategoryTree(snap.Categories))
}

func (s *Server) handleBrowse(c echo.Context) error {
	snap := s.Snapshot()
	if snap == nil {
		return errNotLoaded
	}

	req, err := bindBrowseRequest(c)
	if err != nil {
		return err
	}
	listing, err := catalog.Browse(snap.Categories, snap.Products, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, display.ToListingJSON(listing))
}

func (s *Server) handleFacets(c echo.Context) error {
	snap := s.Snapshot()
	if snap == nil {
		return errNotLoaded
	}

	res, facets, err := catalog.FacetsFor(snap.Categories, snap.Products, c.Param("*"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, display.FacetsJSON{
		Breadcrumbs: res.Names(),
		Category:    res.Node.Name,
		Facets:      facets,
		PriceBands:  filter.PriceBands,
		Discounts:   filter.DiscountPresets,
	})
}

func bindBrowseRequest(c echo.Context) (catalog.Request, error) {
	var (
		q           browseQuery
		minPrice    float64
		maxPrice    float64
		minDiscount int
	)
	err := echo.QueryParamsBinder(c).
		Float64("minPrice", &minPrice).
		Float64("maxPrice", &maxPrice).
		Int("minDiscount", &minDiscount).
		Int("limit", &q.Limit).
		String("band", &q.Band).
		Strings("brand", &q.Brands).
		Strings("ram", &q.RAM).
		Strings("tag", &q.Tags).
		String("sort", &q.Sort).
		BindError()
	if err != nil {
		return catalog.Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if c.QueryParam("minPrice") != "" {
		q.MinPrice = &minPrice
	}
	if c.QueryParam("maxPrice") != "" {
		q.MaxPrice = &maxPrice
	}
	if c.QueryParam("minDiscount") != "" {
		q.MinDiscount = &minDiscount
	}
	if err := c.Validate(&q); err != nil {
		return catalog.Request{}, err
	}

	opts := filter.Options{
		Price:       filter.PriceRange{Min: q.MinPrice, Max: q.MaxPrice},
		Tags:        filter.NewSet(q.Tags...),
		Brands:      filter.NewSet(q.Brands...),
		RAM:         filter.NewSet(q.RAM...),
		MinDiscount: q.MinDiscount,
	}
	if q.Band != "" {
		if !opts.Price.IsEmpty() {
			return catalog.Request{}, echo.NewHTTPError(http.StatusBadRequest, "band cannot be combined with minPrice or maxPrice")
		}
		band, err := filter.ParsePriceBand(q.Band)
		if err != nil {
			return catalog.Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.Price = band.Range()
	}

	strategy, err := filter.ParseSortStrategy(q.Sort)
	if err != nil {
		return catalog.Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return catalog.Request{
		Path:   c.Param("*"),
		Filter: opts,
		Sort:   strategy,
		Limit:  q.Limit,
	}, nil
}

// errorHandler renders every error as {code, message}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := classify(err)
	if code >= http.StatusInternalServerError {
		logger.FromCtx(c.Request().Context()).Error("request failed", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Code: code, Message: message})
	}
	if err != nil {
		s.logger.Warn("writing error response", zap.Error(err))
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, filter.ErrInvalidPriceRange),
		errors.Is(err, filter.ErrInvalidSort),
		errors.Is(err, filter.ErrInvalidPriceBand),
		errors.Is(err, filter.ErrInvalidDiscount):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &he):
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
