package admin

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"odontologia/common"
	"odontologia/content"
	"odontologia/metrics"
	"odontologia/models"
	"odontologia/storage"
)

const maxUploadSize = 10 << 20

// Validation errors the editor can act on. Anything else returned by a
// content write is a store failure: it is already logged and counted, and
// the local state keeps the edit until the next snapshot.
var clientErrors = []struct {
	err    error
	status int
	msg    string
}{
	{content.ErrRecordNotFound, http.StatusNotFound, "Item não encontrado."},
	{content.ErrInvalidRecord, http.StatusBadRequest, "Dados inválidos."},
	{models.ErrUnknownField, http.StatusBadRequest, "Campo desconhecido."},
	{content.ErrInvalidSlot, http.StatusBadRequest, "Texto desconhecido."},
	{content.ErrInvalidTheme, http.StatusBadRequest, "Tema inválido."},
	{content.ErrInvalidLayout, http.StatusBadRequest, "Layout inválido."},
	{content.ErrInvalidColor, http.StatusBadRequest, "Cor inválida."},
	{content.ErrInvalidFontSize, http.StatusBadRequest, "Tamanho de fonte inválido."},
}

// respond writes body unless err is a validation error.
func respond(c *gin.Context, err error, status int, body gin.H) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			c.JSON(ce.status, gin.H{"error": ce.msg})
			return
		}
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos."})
}

func (a *AdminModule) updateText(c *gin.Context) {
	var body struct {
		Value *string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Value == nil {
		badRequest(c)
		return
	}

	slot := c.Param("slot")
	err := a.sync.SetText(c.Request.Context(), slot, *body.Value)
	respond(c, err, http.StatusOK, gin.H{"slot": slot, "value": *body.Value})
}

func (a *AdminModule) updateSettings(c *gin.Context) {
	var body struct {
		Theme             *models.Theme  `json:"theme"`
		Layout            *models.Layout `json:"layout"`
		PrimaryColor      *string        `json:"primaryColor"`
		HeroTitleFontSize *int           `json:"heroTitleFontSize"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}

	// validate everything before the first write
	switch {
	case body.Theme != nil && !body.Theme.Valid():
		respond(c, content.ErrInvalidTheme, 0, nil)
		return
	case body.Layout != nil && !body.Layout.Valid():
		respond(c, content.ErrInvalidLayout, 0, nil)
		return
	case body.PrimaryColor != nil && content.ValidateColor(*body.PrimaryColor) != nil:
		respond(c, content.ErrInvalidColor, 0, nil)
		return
	case body.HeroTitleFontSize != nil && content.ValidateFontSize(*body.HeroTitleFontSize) != nil:
		respond(c, content.ErrInvalidFontSize, 0, nil)
		return
	}

	ctx := c.Request.Context()
	var errs []error
	if body.Theme != nil {
		errs = append(errs, a.sync.SetTheme(ctx, *body.Theme))
	}
	if body.Layout != nil {
		errs = append(errs, a.sync.SetLayout(ctx, *body.Layout))
	}
	if body.PrimaryColor != nil {
		errs = append(errs, a.sync.SetPrimaryColor(ctx, *body.PrimaryColor))
	}
	if body.HeroTitleFontSize != nil {
		errs = append(errs, a.sync.SetHeroTitleFontSize(ctx, *body.HeroTitleFontSize))
	}

	data := a.sync.Data()
	respond(c, errors.Join(errs...), http.StatusOK, gin.H{
		"theme":             data.Theme,
		"layout":            data.Layout,
		"primaryColor":      data.PrimaryColor,
		"heroTitleFontSize": data.HeroTitleFontSize,
	})
}

func (a *AdminModule) updateSocial(c *gin.Context) {
	var links models.SocialLinks
	if err := c.ShouldBindJSON(&links); err != nil {
		badRequest(c)
		return
	}

	links.Instagram = strings.TrimSpace(links.Instagram)
	links.Facebook = strings.TrimSpace(links.Facebook)
	err := a.sync.SetSocialLinks(c.Request.Context(), links)
	respond(c, err, http.StatusOK, gin.H{"socialLinks": links})
}

func (a *AdminModule) updateHeroImage(c *gin.Context) {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		badRequest(c)
		return
	}

	url := strings.TrimSpace(body.URL)
	err := a.sync.SetHeroImage(c.Request.Context(), url)
	respond(c, err, http.StatusOK, gin.H{"heroImage": url, "src": common.NormalizeImageURL(url)})
}

func (a *AdminModule) editor(c *gin.Context) (content.ListEditor, bool) {
	editor, ok := content.Collections[c.Param("collection")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lista desconhecida."})
		return nil, false
	}
	return editor, true
}

func (a *AdminModule) recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return 0, false
	}
	return id, true
}

func (a *AdminModule) addItem(c *gin.Context) {
	editor, ok := a.editor(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		badRequest(c)
		return
	}

	item, err := editor.AddJSON(c.Request.Context(), a.sync, raw)
	if item == nil {
		respond(c, err, http.StatusBadRequest, gin.H{"error": "Dados inválidos."})
		return
	}
	respond(c, err, http.StatusCreated, gin.H{"item": item})
}

func (a *AdminModule) updateItem(c *gin.Context) {
	editor, ok := a.editor(c)
	if !ok {
		return
	}
	id, ok := a.recordID(c)
	if !ok {
		return
	}

	var body struct {
		Field string  `json:"field"`
		Value *string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Field == "" || body.Value == nil {
		badRequest(c)
		return
	}

	err := editor.UpdateField(c.Request.Context(), a.sync, id, body.Field, *body.Value)
	respond(c, err, http.StatusOK, gin.H{"id": id, "field": body.Field, "value": *body.Value})
}

func (a *AdminModule) deleteItem(c *gin.Context) {
	editor, ok := a.editor(c)
	if !ok {
		return
	}
	id, ok := a.recordID(c)
	if !ok {
		return
	}

	msg, err := editor.Delete(c.Request.Context(), a.sync, id)
	respond(c, err, http.StatusOK, gin.H{"message": msg, "undoSeconds": int(a.sync.UndoWindow.Seconds())})
}

func (a *AdminModule) undo(c *gin.Context) {
	err := a.sync.Undo(c.Request.Context())
	if errors.Is(err, content.ErrNothingToUndo) {
		c.JSON(http.StatusConflict, gin.H{"error": "Nada para desfazer."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *AdminModule) dismissUndo(c *gin.Context) {
	a.sync.DismissUndo()
	c.Status(http.StatusNoContent)
}

// upload stores an image and returns its URL. When no object store is
// configured the editor sends the pasted URL in the url field instead.
func (a *AdminModule) upload(c *gin.Context) {
	backend := a.uploader.Backend()
	dir := c.PostForm("dir")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		a.manualURL(c)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Imagem muito grande."})
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, err := a.uploader.Upload(c.Request.Context(), dir, header.Filename, file, header.Size, contentType)
	switch {
	case errors.Is(err, storage.ErrManualOnly):
		a.manualURL(c)
	case errors.Is(err, storage.ErrDirNotAllowed), errors.Is(err, storage.ErrNotImage):
		metrics.Uploads.WithLabelValues(backend, "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Envie uma imagem válida."})
	case err != nil:
		metrics.Uploads.WithLabelValues(backend, "error").Inc()
		a.logger.Error("upload failed", "backend", backend, "dir", dir, "filename", header.Filename, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Falha ao enviar a imagem. Tente novamente."})
	default:
		metrics.Uploads.WithLabelValues(backend, "ok").Inc()
		c.JSON(http.StatusOK, gin.H{"url": url, "src": common.NormalizeImageURL(url)})
	}
}

func (a *AdminModule) manualURL(c *gin.Context) {
	url := strings.TrimSpace(c.PostForm("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Cole o link da imagem.",
			"manual": true,
		})
		return
	}
	metrics.Uploads.WithLabelValues("manual", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"url": url, "src": common.NormalizeImageURL(url)})
}
