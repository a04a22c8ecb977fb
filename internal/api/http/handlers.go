package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/vfs"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	mu     sync.Mutex
	fs     *vfs.Namespace
	image  string
	logger *zap.Logger
}

// NewHandlers creates a handler set over fs. Saves go to image.
func NewHandlers(fs *vfs.Namespace, image string, logger *zap.Logger) *Handlers {
	return &Handlers{fs: fs, image: image, logger: logger}
}

// Register mounts every route on router.
func (h *Handlers) Register(router gin.IRoutes) {
	router.GET("/health", h.Health)

	router.GET("/fs/ls", h.List)
	router.GET("/fs/cat", h.Cat)
	router.POST("/fs/write", h.Write)
	router.POST("/fs/mkdir", h.Mkdir)
	router.DELETE("/fs", h.Remove)
	router.GET("/fs/search", h.Search)

	router.GET("/fs/tags", h.Tags)
	router.POST("/fs/tags", h.AddTag)
	router.DELETE("/fs/tags", h.RemoveTag)

	router.GET("/disk", h.Disk)
	router.POST("/disk/save", h.Save)
}

// PathRequest names a single node.
type PathRequest struct {
	Path string `json:"path" binding:"required"`
}

// WriteRequest replaces a file's content.
type WriteRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// TagRequest adds a tag to a node.
type TagRequest struct {
	Path string `json:"path" binding:"required"`
	Tag  string `json:"tag" binding:"required"`
}

// Health handles the liveness check
func (h *Handlers) Health(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"volume":     h.fs.ID().String(),
		"used_bytes": h.fs.UsedSpace(),
		"mounts":     len(h.fs.ListMountedVolumes()),
	})
}

// List handles directory listings
func (h *Handlers) List(c *gin.Context) {
	p := c.DefaultQuery("path", "/")

	h.mu.Lock()
	entries, err := h.fs.Ls(p)
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": p, "entries": entries})
}

// Cat handles file reads
func (h *Handlers) Cat(c *gin.Context) {
	p, ok := requirePath(c)
	if !ok {
		return
	}

	h.mu.Lock()
	data, err := h.fs.Cat(p)
	compressed, encrypted := h.fs.IsFileCompressed(p), h.fs.IsFileEncrypted(p)
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":       p,
		"content":    string(data),
		"size":       len(data),
		"compressed": compressed,
		"encrypted":  encrypted,
	})
}

// Write handles file writes
func (h *Handlers) Write(c *gin.Context) {
	var req WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	err := h.fs.Write(req.Path, []byte(req.Content))
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path, "size": len(req.Content)})
}

// Mkdir handles directory creation
func (h *Handlers) Mkdir(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	err := h.fs.Mkdir(req.Path)
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "path": req.Path})
}

// Remove handles deletion
func (h *Handlers) Remove(c *gin.Context) {
	p, ok := requirePath(c)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.fs.Remove(p)
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": p})
}

// Search handles filtered searches
func (h *Handlers) Search(c *gin.Context) {
	filter := vfs.SearchFilter{
		Name:    c.Query("name"),
		Content: c.Query("content"),
		Glob:    c.Query("glob"),
	}
	regex := c.Query("regex") == "true"
	filter.NameRegex, filter.ContentRegex = regex, regex
	if tag := c.Query("tag"); tag != "" {
		filter.Tags = []string{tag}
	}

	switch c.Query("type") {
	case "":
	case "f":
		filter.FilesOnly = true
	case "d":
		filter.DirectoriesOnly = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be f or d"})
		return
	}

	var err error
	if filter.MinSize, err = querySize(c, "min"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.MaxSize, err = querySize(c, "max"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	results, err := h.fs.Search(filter, c.DefaultQuery("path", "/"))
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// Tags returns the tags of one node, or all tags when no path is given
func (h *Handlers) Tags(c *gin.Context) {
	p := c.Query("path")

	h.mu.Lock()
	defer h.mu.Unlock()

	if p == "" {
		c.JSON(http.StatusOK, gin.H{"tags": h.fs.AllTags()})
		return
	}
	if _, ok := h.fs.ResolvePath(p); !ok {
		h.fail(c, vfs.ErrNotFound)
		return
	}
	tags := h.fs.FileTags(p)
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"path": p, "tags": tags})
}

// AddTag handles tagging
func (h *Handlers) AddTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	err := h.fs.AddTag(req.Path, req.Tag)
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveTag handles untagging
func (h *Handlers) RemoveTag(c *gin.Context) {
	p, ok := requirePath(c)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.fs.RemoveTag(p, c.Query("tag"))
	h.mu.Unlock()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Disk reports space usage and the mount table
func (h *Handlers) Disk(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"image":       h.image,
		"total_bytes": h.fs.TotalSpace(),
		"used_bytes":  h.fs.UsedSpace(),
		"free_bytes":  h.fs.FreeSpace(),
		"total":       humanize.IBytes(h.fs.TotalSpace()),
		"used":        humanize.IBytes(h.fs.UsedSpace()),
		"free":        humanize.IBytes(h.fs.FreeSpace()),
		"mounts":      h.fs.ListMountedVolumes(),
		"cwd":         h.fs.CurrentPath(),
	})
}

// Save flushes the namespace to its image
func (h *Handlers) Save(c *gin.Context) {
	h.mu.Lock()
	err := h.fs.SaveToDisk(h.image)
	h.mu.Unlock()
	if err != nil {
		h.logger.Error("Save failed", zap.String("image", h.image), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "image": h.image})
}

// fail maps engine errors onto HTTP status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, vfs.ErrNotFound), errors.Is(err, vfs.ErrNotMounted):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrExists), errors.Is(err, vfs.ErrBusy),
		errors.Is(err, vfs.ErrMountBoundary):
		return http.StatusConflict
	case errors.Is(err, vfs.ErrNoSpace):
		return http.StatusInsufficientStorage
	case errors.Is(err, vfs.ErrNotDir), errors.Is(err, vfs.ErrIsDir),
		errors.Is(err, vfs.ErrInvalidPath), errors.Is(err, vfs.ErrInvalidPattern),
		errors.Is(err, vfs.ErrInvalidTag), errors.Is(err, vfs.ErrInvalidKey),
		errors.Is(err, vfs.ErrUnknownAlgorithm), errors.Is(err, vfs.ErrVersionRange),
		errors.Is(err, vfs.ErrNotEncrypted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func requirePath(c *gin.Context) (string, bool) {
	p := c.Query("path")
	if p == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return "", false
	}
	return p, true
}

func querySize(c *gin.Context, key string) (int64, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
