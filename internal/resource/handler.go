package resource

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lifeshield/lifeshield-api/internal/validate"
	"github.com/lifeshield/lifeshield-api/pkg/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// Definition parameterizes the generic CRUD handler for one resource type.
type Definition struct {
	// Name is the singular lower-case noun used in log and error messages.
	Name   string
	Title  string // capitalized noun for "<Title> not found" messages
	Plural string

	BasePath   string
	Collection string

	Rules validate.Rules
	// Prepare fills server-assigned defaults and normalizes fields on the
	// validated record just before insert. It may reject the record (400).
	Prepare func(doc bson.M) error

	// RefFields hold ObjectID references to other collections; they are
	// converted from hex strings on create/update and rejected when malformed.
	RefFields []string

	SearchFields []string
	TagField     string
	CounterField string
	// CreatedField is the server-assigned creation timestamp, used as the
	// newest-first sort key for lists.
	CreatedField string
	// UpdatedField, when set, is refreshed on every PUT/PATCH.
	UpdatedField string
	// OwnerField enables GET /user/:value listing filtered by that field.
	OwnerField string

	// ValidateOnPut selects full-PUT semantics: the submitted record is
	// re-validated in full before the merge. Otherwise PUT is an unvalidated
	// partial merge.
	ValidateOnPut bool
	// ProtectWrites requires a bearer token on POST/PUT/PATCH/DELETE.
	ProtectWrites bool
}

// Handler implements the uniform list/get/create/update/delete contract over
// one resource collection.
type Handler struct {
	def   Definition
	store Store
}

func NewHandler(def Definition, store Store) *Handler {
	return &Handler{def: def, store: store}
}

// Register mounts the resource's routes on the group. authMW guards write
// routes for resources with ProtectWrites set; it may be nil for open resources.
func (h *Handler) Register(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("", h.List)
	if len(h.def.SearchFields) > 0 || h.def.TagField != "" {
		rg.GET("/search", h.Search)
	}
	if h.def.OwnerField != "" {
		rg.GET("/user/:value", h.ListByOwner)
	}
	rg.GET("/:id", h.GetByID)
	if h.def.CounterField != "" {
		rg.POST("/:id/increment-view", h.IncrementView)
	}

	writes := rg
	if h.def.ProtectWrites && authMW != nil {
		writes = rg.Group("", authMW)
	}
	writes.POST("", h.Create)
	writes.PUT("/:id", h.Update)
	writes.PATCH("/:id", h.Patch)
	writes.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	page := queryInt(c, "page", defaultPage)
	limit := queryInt(c, "limit", defaultLimit)

	docs, total, err := h.store.List(c.Request.Context(), Query{
		SortField: h.def.CreatedField,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		logger.Errorf("list %s: %v", h.def.Plural, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + h.def.Plural})
		return
	}
	totalPages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"data":       docs,
		"total":      total,
		"totalPages": totalPages,
		"page":       page,
		"limit":      limit,
	})
}

func (h *Handler) Search(c *gin.Context) {
	q := Query{
		Keyword:       c.Query("keyword"),
		KeywordFields: h.def.SearchFields,
		TagField:      h.def.TagField,
		SortField:     h.def.CreatedField,
	}
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Tags = append(q.Tags, t)
			}
		}
	}

	docs, _, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		logger.Errorf("search %s: %v", h.def.Plural, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search " + h.def.Plural})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) ListByOwner(c *gin.Context) {
	docs, _, err := h.store.List(c.Request.Context(), Query{
		Equals:    map[string]interface{}{h.def.OwnerField: c.Param("value")},
		SortField: h.def.CreatedField,
	})
	if err != nil {
		logger.Errorf("list %s by %s: %v", h.def.Plural, h.def.OwnerField, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + h.def.Plural})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}
	doc, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": h.def.Title + " not found"})
			return
		}
		logger.Errorf("get %s %s: %v", h.def.Name, id.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + h.def.Name})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Create(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if err := h.def.Rules.Validate(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := bson.M(body)
	delete(doc, "_id")
	if !h.convertRefs(c, doc) {
		return
	}
	if h.def.Prepare != nil {
		if err := h.def.Prepare(doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	id, err := h.store.Insert(c.Request.Context(), doc)
	if err != nil {
		logger.Errorf("create %s: %v", h.def.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create " + h.def.Name})
		return
	}
	doc["_id"] = id
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) Update(c *gin.Context) {
	h.merge(c, h.def.ValidateOnPut)
}

func (h *Handler) Patch(c *gin.Context) {
	h.merge(c, false)
}

// merge implements PUT/PATCH: identifier check, validation, then a $set merge
// of the submitted fields. full selects full re-validation of the body.
func (h *Handler) merge(c *gin.Context, full bool) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	var err error
	if full {
		err = h.def.Rules.Validate(body)
	} else {
		err = h.def.Rules.ValidatePartial(body)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := bson.M(body)
	delete(fields, "_id")
	if !h.convertRefs(c, fields) {
		return
	}
	if h.def.TagField != "" {
		if v, present := fields[h.def.TagField]; present {
			fields[h.def.TagField] = NormalizeTags(v)
		}
	}
	if h.def.UpdatedField != "" {
		fields[h.def.UpdatedField] = time.Now()
	}

	updated, err := h.store.Merge(c.Request.Context(), id, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": h.def.Title + " not found"})
			return
		}
		logger.Errorf("update %s %s: %v", h.def.Name, id.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update " + h.def.Name})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": h.def.Title + " not found"})
			return
		}
		logger.Errorf("delete %s %s: %v", h.def.Name, id.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete " + h.def.Name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.def.Title + " deleted"})
}

func (h *Handler) IncrementView(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}
	views, err := h.store.Increment(c.Request.Context(), id, h.def.CounterField, 1)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": h.def.Title + " not found"})
			return
		}
		logger.Errorf("increment %s %s: %v", h.def.Name, id.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to increment " + h.def.CounterField})
		return
	}
	c.JSON(http.StatusOK, gin.H{h.def.CounterField: views})
}

// objectID validates the path identifier before any storage access.
func (h *Handler) objectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// convertRefs turns hex reference fields into ObjectIDs, rejecting malformed ones.
func (h *Handler) convertRefs(c *gin.Context, doc bson.M) bool {
	for _, f := range h.def.RefFields {
		v, present := doc[f]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + f})
			return false
		}
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + f})
			return false
		}
		doc[f] = oid
	}
	return true
}

// NormalizeTags turns a scalar-or-list tags value into a uniform string slice.
func NormalizeTags(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func queryInt(c *gin.Context, key string, def int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}
