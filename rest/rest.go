package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/Seklfreak/robyul-starboard/modules/plugins/starboard"
	"github.com/emicklei/go-restful"
	"github.com/getsentry/raven-go"
	"github.com/pkg/errors"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
	requestTimeout  = 10 * time.Second
)

type starboardResource struct {
	engine func() *starboard.Engine
}

// NewRestServices returns the starboard web services, engine returns nil while the bot is not ready
func NewRestServices(engine func() *starboard.Engine) []*restful.WebService {
	services := make([]*restful.WebService, 0)
	resource := &starboardResource{engine: engine}

	service := new(restful.WebService)
	service.
		Path("/starboard").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	service.Route(service.GET("/entries/{message-id}").To(resource.FindEntry))
	service.Route(service.GET("/top").To(resource.GetTop))
	service.Route(service.GET("/enabled").To(resource.GetEnabled))
	service.Route(service.PUT("/enabled").To(resource.SetEnabled))
	services = append(services, service)

	return services
}

func (s *starboardResource) FindEntry(request *restful.Request, response *restful.Response) {
	engine := s.ready(response)
	if engine == nil {
		return
	}
	ctx, cancel := context.WithTimeout(request.Request.Context(), requestTimeout)
	defer cancel()

	messageID := request.PathParameter("message-id")

	entry, err := engine.Store().FindByOriginID(ctx, messageID)
	if errors.Is(err, starboard.ErrEntryNotFound) {
		entry, err = engine.Store().FindByPromotedID(ctx, messageID)
	}
	if errors.Is(err, starboard.ErrEntryNotFound) {
		writeError(response, http.StatusNotFound, "Entry not found.")
		return
	}
	if err != nil {
		internalError(response, err)
		return
	}

	response.WriteEntity(restEntry(entry))
}

func (s *starboardResource) GetTop(request *restful.Request, response *restful.Response) {
	engine := s.ready(response)
	if engine == nil {
		return
	}
	ctx, cancel := context.WithTimeout(request.Request.Context(), requestTimeout)
	defer cancel()

	limit := defaultTopLimit
	if limitText := request.QueryParameter("limit"); limitText != "" {
		var err error
		limit, err = strconv.Atoi(limitText)
		if err != nil || limit < 1 {
			writeError(response, http.StatusBadRequest, "Invalid limit.")
			return
		}
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	entries, err := engine.Store().Top(ctx, limit)
	if err != nil {
		internalError(response, err)
		return
	}

	result := make([]models.Rest_StarEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, restEntry(entry))
	}
	response.WriteEntity(result)
}

func (s *starboardResource) GetEnabled(request *restful.Request, response *restful.Response) {
	engine := s.ready(response)
	if engine == nil {
		return
	}

	response.WriteEntity(&models.Rest_Starboard_Switch{
		Enabled: engine.Switch().Enabled(request.Request.Context()),
	})
}

func (s *starboardResource) SetEnabled(request *restful.Request, response *restful.Response) {
	engine := s.ready(response)
	if engine == nil {
		return
	}

	var body models.Rest_Starboard_Switch
	err := request.ReadEntity(&body)
	if err != nil {
		writeError(response, http.StatusBadRequest, "Invalid body.")
		return
	}

	err = engine.Switch().SetEnabled(request.Request.Context(), body.Enabled)
	if err != nil {
		internalError(response, err)
		return
	}

	response.WriteEntity(&body)
}

func (s *starboardResource) ready(response *restful.Response) *starboard.Engine {
	engine := s.engine()
	if engine == nil {
		writeError(response, http.StatusServiceUnavailable, "Starboard is not ready.")
	}
	return engine
}

func restEntry(entry models.StarEntry) models.Rest_StarEntry {
	attachmentURLs := entry.AttachmentURLs
	if attachmentURLs == nil {
		attachmentURLs = make([]string, 0)
	}

	return models.Rest_StarEntry{
		ID:                entry.ID.Hex(),
		GuildID:           entry.GuildID,
		AuthorID:          entry.AuthorID,
		AuthorDisplayName: entry.AuthorDisplayName,
		AuthorAvatarURL:   entry.AuthorAvatarURL,
		Content:           entry.Content,
		OriginChannelID:   entry.OriginChannelID,
		OriginMessageID:   entry.OriginMessageID,
		AttachmentURLs:    attachmentURLs,
		StarCount:         entry.StarCount,
		Status:            entry.Status,
		PromotedChannelID: entry.PromotedChannelID,
		PromotedMessageID: entry.PromotedMessageID,
		ReviewChannelID:   entry.ReviewChannelID,
		ReviewMessageID:   entry.ReviewMessageID,
		ReviewedByUserID:  entry.ReviewedByUserID,
		ReviewedAt:        entry.ReviewedAt,
		CreatedAt:         entry.CreatedAt,
	}
}

func writeError(response *restful.Response, status int, message string) {
	response.WriteHeaderAndEntity(status, &models.Rest_Error{Message: message})
}

func internalError(response *restful.Response, err error) {
	raven.CaptureError(err, map[string]string{"module": "rest"})
	writeError(response, http.StatusInternalServerError, "Internal error.")
}
