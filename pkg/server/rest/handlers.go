package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/kv"
	"github.com/lintang-b-s/jointgraph/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	GetJointEdges(ctx context.Context, jointID uint32, isOutgoing, withoutRestrictions bool) ([]datastructure.JointEdge,
		datastructure.Coordinate, error)
	SnapToJoint(ctx context.Context, lat, lon float64) (uint32, datastructure.Coordinate, error)
	GetNearbyJoints(ctx context.Context, lat, lon float64) ([]kv.JointCell, error)
	GetConnectionPolyline(ctx context.Context, from, to uint32) (string, error)
}

type NavigationHandler struct {
	svc NavigationService
}

func NavigatorRouter(r *chi.Mux, svc NavigationService) {
	handler := &NavigationHandler{svc}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigations", func(r chi.Router) {
			r.Get("/joints/{jointID}/edges", handler.JointEdges)
			r.Post("/snap", handler.SnapToJoint)
			r.Post("/nearby-joints", handler.NearbyJoints)
			r.Post("/connection", handler.ConnectionPolyline)
		})
	})
}

// JointEdgeResponse model info
//
//	@Description	response body for joint edge enumeration
type JointEdgeResponse struct {
	JointID uint32  `json:"joint_id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Edges   []struct {
		Target uint32  `json:"target"`
		Weight float64 `json:"weight"`
	} `json:"edges"`
}

func RenderJointEdgeResponse(jointID uint32, point datastructure.Coordinate,
	edges []datastructure.JointEdge) *JointEdgeResponse {
	edgesResp := make([]struct {
		Target uint32  `json:"target"`
		Weight float64 `json:"weight"`
	}, 0, len(edges))
	for _, e := range edges {
		edgesResp = append(edgesResp, struct {
			Target uint32  `json:"target"`
			Weight float64 `json:"weight"`
		}{
			Target: uint32(e.Target),
			Weight: e.Weight,
		})
	}
	return &JointEdgeResponse{
		JointID: jointID,
		Lat:     point.Lat,
		Lon:     point.Lon,
		Edges:   edgesResp,
	}
}

// JointEdges
//
//	@Summary		enumerate the weighted edges of one joint
//	@Description	enumerate the weighted edges of one joint. raw=true shows the graph before turn-restriction rewriting
//	@Tags			navigations
//	@Param			jointID	path	int	true	"joint id"
//	@Param			outgoing	query	bool	false	"outgoing or ingoing edges"
//	@Param			raw	query	bool	false	"enumerate without restrictions"
//	@Produce		application/json
//	@Router			/navigations/joints/{jointID}/edges [get]
//	@Success		200	{object}	JointEdgeResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) JointEdges(w http.ResponseWriter, r *http.Request) {
	jointID, err := strconv.ParseUint(chi.URLParam(r, "jointID"), 10, 32)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(errors.New("invalid joint id")))
		return
	}

	isOutgoing := r.URL.Query().Get("outgoing") != "false"
	withoutRestrictions := r.URL.Query().Get("raw") == "true"

	edges, point, err := h.svc.GetJointEdges(r.Context(), uint32(jointID), isOutgoing, withoutRestrictions)
	if err != nil {
		if errors.Is(err, service.ErrJointNotFound) {
			render.Render(w, r, ErrNotFoundRend(err))
			return
		}
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderJointEdgeResponse(uint32(jointID), point, edges))
}

// SnapRequest model info
//
//	@Description	request body for joint snapping
type SnapRequest struct {
	Lat float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon float64 `json:"lon" validate:"required,lt=180,gt=-180"`
}

func (s *SnapRequest) Bind(r *http.Request) error {
	if s.Lat == 0 && s.Lon == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// SnapResponse model info
//
//	@Description	response body for joint snapping
type SnapResponse struct {
	JointID uint32  `json:"joint_id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// SnapToJoint
//
//	@Summary		snap a coordinate to the nearest joint
//	@Description	snap a coordinate to the nearest joint of the road network
//	@Tags			navigations
//	@Param			body	body	SnapRequest	true	"request body for joint snapping"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/snap [post]
//	@Success		200	{object}	SnapResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) SnapToJoint(w http.ResponseWriter, r *http.Request) {
	data := &SnapRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered := validateRequest(w, r, *data); rendered {
		return
	}

	jointID, point, err := h.svc.SnapToJoint(r.Context(), data.Lat, data.Lon)
	if err != nil {
		if errors.Is(err, service.ErrJointNotFound) {
			render.Render(w, r, ErrNotFoundRend(err))
			return
		}
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &SnapResponse{JointID: jointID, Lat: point.Lat, Lon: point.Lon})
}

// NearbyJointsResponse model info
//
//	@Description	response body for the h3 nearby joints lookup
type NearbyJointsResponse struct {
	Joints []struct {
		JointID uint32  `json:"joint_id"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"joints"`
}

func RenderNearbyJointsResponse(joints []kv.JointCell) *NearbyJointsResponse {
	jointsResp := make([]struct {
		JointID uint32  `json:"joint_id"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}, 0, len(joints))
	for _, j := range joints {
		jointsResp = append(jointsResp, struct {
			JointID uint32  `json:"joint_id"`
			Lat     float64 `json:"lat"`
			Lon     float64 `json:"lon"`
		}{
			JointID: j.JointID,
			Lat:     j.Lat,
			Lon:     j.Lon,
		})
	}
	return &NearbyJointsResponse{Joints: jointsResp}
}

// NearbyJoints
//
//	@Summary		list the joints around a coordinate
//	@Description	list the joints in the h3 cell neighborhood of a coordinate
//	@Tags			navigations
//	@Param			body	body	SnapRequest	true	"request body for the nearby joints lookup"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/nearby-joints [post]
//	@Success		200	{object}	NearbyJointsResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) NearbyJoints(w http.ResponseWriter, r *http.Request) {
	data := &SnapRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered := validateRequest(w, r, *data); rendered {
		return
	}

	joints, err := h.svc.GetNearbyJoints(r.Context(), data.Lat, data.Lon)
	if err != nil {
		if errors.Is(err, service.ErrJointNotFound) {
			render.Render(w, r, ErrNotFoundRend(err))
			return
		}
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderNearbyJointsResponse(joints))
}

// ConnectionRequest model info
//
//	@Description	request body for the joint connection polyline
type ConnectionRequest struct {
	From uint32 `json:"from"`
	To   uint32 `json:"to" validate:"required"`
}

func (s *ConnectionRequest) Bind(r *http.Request) error {
	if s.From == s.To {
		return errors.New("invalid request")
	}
	return nil
}

// ConnectionResponse model info
//
//	@Description	response body for the joint connection polyline
type ConnectionResponse struct {
	Polyline string `json:"polyline"`
}

// ConnectionPolyline
//
//	@Summary		cheapest direct connection between two joints
//	@Description	encode the cheapest direct feature connection between two joints as a polyline
//	@Tags			navigations
//	@Param			body	body	ConnectionRequest	true	"request body for the connection polyline"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/connection [post]
//	@Success		200	{object}	ConnectionResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) ConnectionPolyline(w http.ResponseWriter, r *http.Request) {
	data := &ConnectionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered := validateRequest(w, r, *data); rendered {
		return
	}

	encodedPolyline, err := h.svc.GetConnectionPolyline(r.Context(), data.From, data.To)
	if err != nil {
		if errors.Is(err, service.ErrJointNotFound) || errors.Is(err, service.ErrNoConnection) {
			render.Render(w, r, ErrNotFoundRend(err))
			return
		}
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &ConnectionResponse{Polyline: encodedPolyline})
}

func validateRequest(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	validate := validator.New()
	if err := validate.Struct(data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return true
	}
	return false
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrResponse model info
//
//	@Description	model for error responses
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrNotFoundRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 404,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}
