package handlers

import (
	"net/http"

	"sprout/pkg/utils"
)

// UploadHandler accepts a generic multipart image upload and returns its
// public URL. An optional plantId form field namespaces the file under that
// plant's directory; ownership is checked when it is present.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	maxUpload := utils.SizeToBytes(h.cfg.Upload.MaxSize, 10<<20)
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestBodyTooLarge, "File exceeds size limit.")
		return
	}

	_, fh, err := r.FormFile("image")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Missing 'image' file field.")
		return
	}

	plantID := r.FormValue("plantId")
	if plantID != "" {
		if _, err := h.repo.GetPlant(s.ID, plantID); err != nil {
			h.writeRepoError(w, err, "Plant not found", "Failed to upload file")
			return
		}
	}

	saved, err := h.store.SaveUpload(fh, "", plantID)
	if err != nil {
		h.writeRepoError(w, err, "", "Failed to upload file")
		return
	}

	utils.WriteData(w, http.StatusOK, saved)
}
