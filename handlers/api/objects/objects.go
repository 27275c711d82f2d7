package objects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"canvas-earth/canvas"
	"canvas-earth/core"
	"canvas-earth/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	// CreateObjectRequest mirrors the JSON body of POST /api/objects.
	// Geometry fields are pointers so missing values are detectable.
	CreateObjectRequest struct {
		ObjectType string   `json:"objectType"`
		ContentURL string   `json:"contentUrl"`
		PositionX  *float64 `json:"positionX"`
		PositionY  *float64 `json:"positionY"`
		Width      *float64 `json:"width"`
		Height     *float64 `json:"height"`
		ZIndex     *int     `json:"zIndex"`
		OwnerID    string   `json:"ownerId"`
		FontSize   int      `json:"fontSize"`
		FontWeight string   `json:"fontWeight"`
		TextColor  string   `json:"textColor"`
	}

	// ObjectService is what the handlers need from the mutation service.
	ObjectService interface {
		Viewport(ctx context.Context, bounds *core.Bounds) ([]*core.CanvasObject, error)
		Get(ctx context.Context, id string) (*core.CanvasObject, error)
		Create(ctx context.Context, p canvas.CreateParams) (*core.CanvasObject, error)
		Update(ctx context.Context, id string, patch core.ObjectPatch) (*core.CanvasObject, error)
		Delete(ctx context.Context, id string) error
		UploadAndCreate(ctx context.Context, p canvas.UploadParams) (*core.CanvasObject, error)
	}
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory;
// the rest spills to temp files.
const maxUploadMemory = 32 << 20

// writeError maps core error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status  int
		blobErr *core.BlobError
	)
	switch {
	case core.IsNotFound(err):
		status = http.StatusNotFound
	case core.IsValidation(err):
		status = http.StatusBadRequest
	case errors.As(err, &blobErr):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

// HandleViewport lists objects overlapping the viewport rectangle, or every
// object when no bounds are given. Bounds are all-or-nothing.
func HandleViewport(service ObjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bounds, err := parseBounds(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		objects, err := service.Viewport(r.Context(), bounds)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// Return an empty array instead of null when the canvas is empty.
		if objects == nil {
			objects = []*core.CanvasObject{}
		}
		render.JSON(w, r, objects)
	}
}

// HandleGet returns a single object snapshot.
func HandleGet(service ObjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		object, err := service.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		render.JSON(w, r, object)
	}
}

// HandleCreate creates a new canvas object and answers with the snapshot.
func HandleCreate(service ObjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateObjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, &core.ValidationError{Reason: "invalid request body"})
			return
		}

		params, err := req.toParams(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		object, err := service.Create(r.Context(), params)
		if err != nil {
			writeError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, object)
	}
}

// HandleUpdate applies a sparse patch; absent fields stay untouched.
func HandleUpdate(service ObjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var patch core.ObjectPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, r, &core.ValidationError{Reason: "invalid request body"})
			return
		}

		object, err := service.Update(r.Context(), id, patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		render.JSON(w, r, object)
	}
}

// HandleDelete removes an object permanently.
func HandleDelete(service ObjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := service.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		render.NoContent(w, r)
	}
}

// HandleUpload accepts a multipart form with a file plus object geometry,
// stores the file through the blob collaborator, and creates the object.
func HandleUpload(service ObjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, r, &core.ValidationError{Field: "file", Reason: "invalid multipart form"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "file", Reason: "is required"})
			return
		}
		defer file.Close()

		params, err := uploadParamsFromForm(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		params.Filename = header.Filename
		params.ContentType = header.Header.Get("Content-Type")
		params.Size = header.Size
		params.File = file

		object, err := service.UploadAndCreate(r.Context(), params)
		if err != nil {
			writeError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, object)
	}
}

func (req *CreateObjectRequest) toParams(r *http.Request) (canvas.CreateParams, error) {
	objectType, err := core.ParseObjectType(req.ObjectType)
	if err != nil {
		return canvas.CreateParams{}, err
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		// A valid bearer token makes its subject the default owner.
		ownerID = middleware.IdentityFromContext(r.Context())
	}

	return canvas.CreateParams{
		ObjectType: objectType,
		ContentURL: req.ContentURL,
		PositionX:  req.PositionX,
		PositionY:  req.PositionY,
		Width:      req.Width,
		Height:     req.Height,
		ZIndex:     req.ZIndex,
		OwnerID:    ownerID,
		FontSize:   req.FontSize,
		FontWeight: req.FontWeight,
		TextColor:  req.TextColor,
	}, nil
}

func uploadParamsFromForm(r *http.Request) (canvas.UploadParams, error) {
	objectType, err := core.ParseObjectType(r.FormValue("objectType"))
	if err != nil {
		return canvas.UploadParams{}, err
	}

	positionX, err := formFloat(r, "positionX")
	if err != nil {
		return canvas.UploadParams{}, err
	}
	positionY, err := formFloat(r, "positionY")
	if err != nil {
		return canvas.UploadParams{}, err
	}
	width, err := formFloat(r, "width")
	if err != nil {
		return canvas.UploadParams{}, err
	}
	height, err := formFloat(r, "height")
	if err != nil {
		return canvas.UploadParams{}, err
	}

	var zIndex *int
	if raw := r.FormValue("zIndex"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return canvas.UploadParams{}, &core.ValidationError{Field: "zIndex", Reason: "must be an integer"}
		}
		zIndex = &v
	}

	ownerID := r.FormValue("ownerId")
	if ownerID == "" {
		ownerID = middleware.IdentityFromContext(r.Context())
	}

	return canvas.UploadParams{
		CreateParams: canvas.CreateParams{
			ObjectType: objectType,
			PositionX:  positionX,
			PositionY:  positionY,
			Width:      width,
			Height:     height,
			ZIndex:     zIndex,
			OwnerID:    ownerID,
		},
	}, nil
}

func formFloat(r *http.Request, field string) (*float64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &core.ValidationError{Field: field, Reason: "must be a number"}
	}
	return &v, nil
}

// parseBounds reads the optional viewport rectangle from the query string.
// Either all four bounds are present or none are.
func parseBounds(r *http.Request) (*core.Bounds, error) {
	q := r.URL.Query()
	raw := []string{q.Get("minX"), q.Get("minY"), q.Get("maxX"), q.Get("maxY")}

	present := 0
	for _, v := range raw {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(raw) {
		return nil, &core.ValidationError{Field: "bounds", Reason: "minX, minY, maxX and maxY must be provided together"}
	}

	values := make([]float64, len(raw))
	names := []string{"minX", "minY", "maxX", "maxY"}
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &core.ValidationError{Field: names[i], Reason: "must be a number"}
		}
		values[i] = f
	}
	return &core.Bounds{MinX: values[0], MinY: values[1], MaxX: values[2], MaxY: values[3]}, nil
}
