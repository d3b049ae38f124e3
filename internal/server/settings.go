package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"globalcrusade/internal/currency"
	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"
)

// 10MB cap on uploaded flyer/gallery images.
const maxUploadBytes = 10 << 20

type AdminSettingsPageData struct {
	Title  string
	Notice string
	Error  string

	Stats       *types.CrusadeStats
	Flyers      []*types.CrusadeFlyer
	Images      []*types.MinistryImage
	Testimonies []*types.Testimony
}

func (s *Service) handleGetAdminSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade stats")
		s.internalServerError(w)
		return
	}

	flyers, err := s.flyerRepo.CrusadeFlyers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade flyers")
		s.internalServerError(w)
		return
	}

	images, err := s.imageRepo.MinistryImages(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load ministry images")
		s.internalServerError(w)
		return
	}

	testimonies, err := s.testimonyRepo.Testimonies(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load testimonies")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.admin-settings", AdminSettingsPageData{
		Title:  "Site Settings",
		Notice: r.URL.Query().Get("notice"),
		Error:  r.URL.Query().Get("error"),

		Stats:       stats,
		Flyers:      flyers,
		Images:      images,
		Testimonies: testimonies,
	})
}

func (s *Service) handlePostAdminSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectSettings(w, r, "error", "Invalid form submission.")
		return
	}

	budgetCents, err := currency.ParseAmount(r.PostFormValue("budgeted_amount"))
	if err != nil || budgetCents < 0 {
		s.redirectSettings(w, r, "error", "Budgeted amount must be a valid number.")
		return
	}

	crusadesPlanned, err := strconv.Atoi(r.PostFormValue("crusades_planned"))
	if err != nil || crusadesPlanned < 0 {
		s.redirectSettings(w, r, "error", "Crusades planned must be a whole number.")
		return
	}

	countriesList := strings.TrimSpace(r.PostFormValue("countries_list"))

	err = s.statsRepo.UpdateSettings(r.Context(), budgetCents, crusadesPlanned, countriesList)
	if err != nil {
		s.logger.WithError(err).Error("failed to update crusade settings")
		s.redirectSettings(w, r, "error", "Could not save settings.")
		return
	}

	s.redirectSettings(w, r, "notice", "Settings saved.")
}

func (s *Service) handleAdminFlyerCreate(w http.ResponseWriter, r *http.Request) {
	title, description, displayOrder, key, ok := s.handleImageUpload(w, r, "flyers")
	if !ok {
		return
	}

	flyer := &types.CrusadeFlyer{
		Title:        title,
		Description:  utils.StringPtrOrNil(description),
		ImageKey:     key,
		IsActive:     true,
		DisplayOrder: displayOrder,
	}

	if err := s.flyerRepo.CreateCrusadeFlyer(r.Context(), flyer); err != nil {
		s.logger.WithError(err).Error("failed to create crusade flyer")
		s.redirectSettings(w, r, "error", "Could not save flyer.")
		return
	}

	s.redirectSettings(w, r, "notice", "Flyer uploaded.")
}

func (s *Service) handleAdminFlyerToggle(w http.ResponseWriter, r *http.Request) {
	flyerID := r.PathValue("flyerID")

	if err := s.flyerRepo.ToggleCrusadeFlyer(r.Context(), flyerID); err != nil {
		s.logger.WithError(err).WithField("flyer_id", flyerID).Error("failed to toggle flyer")
		s.redirectSettings(w, r, "error", "Could not update flyer.")
		return
	}

	s.redirectSettings(w, r, "notice", "Flyer updated.")
}

func (s *Service) handleAdminFlyerDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flyerID := r.PathValue("flyerID")

	flyer, err := s.flyerRepo.CrusadeFlyer(ctx, flyerID)
	if err != nil {
		s.redirectSettings(w, r, "error", "Flyer not found.")
		return
	}

	if err := s.flyerRepo.DeleteCrusadeFlyer(ctx, flyerID); err != nil {
		s.logger.WithError(err).WithField("flyer_id", flyerID).Error("failed to delete flyer")
		s.redirectSettings(w, r, "error", "Could not delete flyer.")
		return
	}

	if err := s.images.Delete(ctx, flyer.ImageKey); err != nil {
		s.logger.WithError(err).WithField("image_key", flyer.ImageKey).
			Warn("failed to delete flyer image from storage")
	}

	s.redirectSettings(w, r, "notice", "Flyer deleted.")
}

func (s *Service) handleAdminImageCreate(w http.ResponseWriter, r *http.Request) {
	title, description, displayOrder, key, ok := s.handleImageUpload(w, r, "ministry")
	if !ok {
		return
	}

	imageType := types.ImageType(r.PostFormValue("image_type"))
	if !imageType.Valid() {
		s.redirectSettings(w, r, "error", "Unknown image type.")
		return
	}

	image := &types.MinistryImage{
		Title:        title,
		Description:  utils.StringPtrOrNil(description),
		ImageKey:     key,
		ImageType:    imageType,
		IsActive:     true,
		DisplayOrder: displayOrder,
	}

	if err := s.imageRepo.CreateMinistryImage(r.Context(), image); err != nil {
		s.logger.WithError(err).Error("failed to create ministry image")
		s.redirectSettings(w, r, "error", "Could not save image.")
		return
	}

	s.redirectSettings(w, r, "notice", "Image uploaded.")
}

func (s *Service) handleAdminImageToggle(w http.ResponseWriter, r *http.Request) {
	imageID := r.PathValue("imageID")

	if err := s.imageRepo.ToggleMinistryImage(r.Context(), imageID); err != nil {
		s.logger.WithError(err).WithField("image_id", imageID).Error("failed to toggle image")
		s.redirectSettings(w, r, "error", "Could not update image.")
		return
	}

	s.redirectSettings(w, r, "notice", "Image updated.")
}

func (s *Service) handleAdminImageDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imageID := r.PathValue("imageID")

	image, err := s.imageRepo.MinistryImage(ctx, imageID)
	if err != nil {
		s.redirectSettings(w, r, "error", "Image not found.")
		return
	}

	if err := s.imageRepo.DeleteMinistryImage(ctx, imageID); err != nil {
		s.logger.WithError(err).WithField("image_id", imageID).Error("failed to delete image")
		s.redirectSettings(w, r, "error", "Could not delete image.")
		return
	}

	if err := s.images.Delete(ctx, image.ImageKey); err != nil {
		s.logger.WithError(err).WithField("image_key", image.ImageKey).
			Warn("failed to delete ministry image from storage")
	}

	s.redirectSettings(w, r, "notice", "Image deleted.")
}

func (s *Service) handleAdminTestimonyCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectSettings(w, r, "error", "Invalid form submission.")
		return
	}

	testimony, errMsg := testimonyFromForm(r)
	if errMsg != "" {
		s.redirectSettings(w, r, "error", errMsg)
		return
	}
	testimony.IsActive = true

	if err := s.testimonyRepo.CreateTestimony(r.Context(), testimony); err != nil {
		s.logger.WithError(err).Error("failed to create testimony")
		s.redirectSettings(w, r, "error", "Could not save testimony.")
		return
	}

	s.redirectSettings(w, r, "notice", "Testimony added.")
}

func (s *Service) handleAdminTestimonyUpdate(w http.ResponseWriter, r *http.Request) {
	testimonyID := r.PathValue("testimonyID")

	if err := r.ParseForm(); err != nil {
		s.redirectSettings(w, r, "error", "Invalid form submission.")
		return
	}

	testimony, errMsg := testimonyFromForm(r)
	if errMsg != "" {
		s.redirectSettings(w, r, "error", errMsg)
		return
	}

	if err := s.testimonyRepo.UpdateTestimony(r.Context(), testimonyID, testimony); err != nil {
		s.logger.WithError(err).WithField("testimony_id", testimonyID).
			Error("failed to update testimony")
		s.redirectSettings(w, r, "error", "Could not update testimony.")
		return
	}

	s.redirectSettings(w, r, "notice", "Testimony updated.")
}

func (s *Service) handleAdminTestimonyToggle(w http.ResponseWriter, r *http.Request) {
	testimonyID := r.PathValue("testimonyID")

	if err := s.testimonyRepo.ToggleTestimony(r.Context(), testimonyID); err != nil {
		s.logger.WithError(err).WithField("testimony_id", testimonyID).
			Error("failed to toggle testimony")
		s.redirectSettings(w, r, "error", "Could not update testimony.")
		return
	}

	s.redirectSettings(w, r, "notice", "Testimony updated.")
}

func (s *Service) handleAdminTestimonyDelete(w http.ResponseWriter, r *http.Request) {
	testimonyID := r.PathValue("testimonyID")

	if err := s.testimonyRepo.DeleteTestimony(r.Context(), testimonyID); err != nil {
		s.logger.WithError(err).WithField("testimony_id", testimonyID).
			Error("failed to delete testimony")
		s.redirectSettings(w, r, "error", "Could not delete testimony.")
		return
	}

	s.redirectSettings(w, r, "notice", "Testimony deleted.")
}

// handleImageUpload parses the multipart form shared by the flyer and
// ministry image upload panels, pushes the file to object storage, and
// returns the common fields. On failure it writes the redirect itself
// and returns ok=false.
func (s *Service) handleImageUpload(w http.ResponseWriter, r *http.Request, keyPrefix string) (title, description string, displayOrder int, key string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.redirectSettings(w, r, "error", "Upload too large or malformed.")
		return
	}

	title = strings.TrimSpace(r.PostFormValue("title"))
	if title == "" {
		s.redirectSettings(w, r, "error", "Title is required.")
		return
	}
	description = strings.TrimSpace(r.PostFormValue("description"))
	displayOrder, _ = strconv.Atoi(r.PostFormValue("display_order"))

	file, header, err := r.FormFile("image")
	if err != nil {
		s.redirectSettings(w, r, "error", "An image file is required.")
		return
	}
	defer file.Close()

	key, err = s.uploadImage(r, file, header, keyPrefix)
	if err != nil {
		s.logger.WithError(err).Error("failed to upload image")
		s.redirectSettings(w, r, "error", "Could not upload image.")
		return
	}

	ok = true
	return
}

func (s *Service) uploadImage(r *http.Request, file multipart.File, header *multipart.FileHeader, keyPrefix string) (string, error) {
	ext := strings.ToLower(path.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s%s", keyPrefix, utils.NanoID(), ext)

	if _, err := s.images.Upload(r.Context(), key, file, contentType); err != nil {
		return "", err
	}

	return key, nil
}

func testimonyFromForm(r *http.Request) (*types.Testimony, string) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	location := strings.TrimSpace(r.PostFormValue("location"))
	text := strings.TrimSpace(r.PostFormValue("testimony_text"))
	displayOrder, _ := strconv.Atoi(r.PostFormValue("display_order"))

	if name == "" || text == "" {
		return nil, "Name and testimony text are required."
	}

	return &types.Testimony{
		Name:          name,
		Location:      location,
		TestimonyText: text,
		DisplayOrder:  displayOrder,
	}, ""
}

func (s *Service) redirectSettings(w http.ResponseWriter, r *http.Request, key, msg string) {
	v := url.Values{}
	v.Set(key, msg)
	http.Redirect(w, r, "/dashboard/settings?"+v.Encode(), http.StatusSeeOther)
}
