package server

import (
	"net/http"
	"net/url"
	"strings"

	"globalcrusade/pkg/types"
)

type HomePageData struct {
	Title  string
	Notice string

	Stats       *types.CrusadeStats
	HeroImages  []*types.MinistryImage
	Flyers      []*types.CrusadeFlyer
	Testimonies []*types.Testimony
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade stats")
		s.internalServerError(w)
		return
	}

	heroImages, err := s.imageRepo.ActiveMinistryImages(ctx, types.ImageTypeHero)
	if err != nil {
		s.logger.WithError(err).Error("failed to load hero images")
		s.internalServerError(w)
		return
	}

	flyers, err := s.flyerRepo.ActiveCrusadeFlyers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade flyers")
		s.internalServerError(w)
		return
	}

	testimonies, err := s.testimonyRepo.ActiveTestimonies(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load testimonies")
		s.internalServerError(w)
		return
	}
	if len(testimonies) > 3 {
		testimonies = testimonies[:3]
	}

	s.renderPage(w, "page.home", HomePageData{
		Title:  "Home",
		Notice: r.URL.Query().Get("notice"),

		Stats:       stats,
		HeroImages:  heroImages,
		Flyers:      flyers,
		Testimonies: testimonies,
	})
}

type AboutPageData struct {
	Title  string
	Images []*types.MinistryImage
	Stats  *types.CrusadeStats
}

func (s *Service) handleAbout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	images, err := s.imageRepo.ActiveMinistryImages(ctx, types.ImageTypeAbout)
	if err != nil {
		s.logger.WithError(err).Error("failed to load about images")
		s.internalServerError(w)
		return
	}

	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade stats")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.about", AboutPageData{
		Title:  "About",
		Images: images,
		Stats:  stats,
	})
}

type CrusadesPageData struct {
	Title  string
	Stats  *types.CrusadeStats
	Flyers []*types.CrusadeFlyer
	Images []*types.MinistryImage
}

func (s *Service) handleCrusades(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade stats")
		s.internalServerError(w)
		return
	}

	flyers, err := s.flyerRepo.ActiveCrusadeFlyers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade flyers")
		s.internalServerError(w)
		return
	}

	images, err := s.imageRepo.ActiveMinistryImages(ctx, types.ImageTypeCrusade)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade images")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.crusades", CrusadesPageData{
		Title:  "Crusades",
		Stats:  stats,
		Flyers: flyers,
		Images: images,
	})
}

type TestimoniesPageData struct {
	Title       string
	Testimonies []*types.Testimony
	Images      []*types.MinistryImage
}

func (s *Service) handleTestimonies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	testimonies, err := s.testimonyRepo.ActiveTestimonies(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load testimonies")
		s.internalServerError(w)
		return
	}

	images, err := s.imageRepo.ActiveMinistryImages(ctx, types.ImageTypeTestimony)
	if err != nil {
		s.logger.WithError(err).Error("failed to load testimony images")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.testimonies", TestimoniesPageData{
		Title:       "Testimonies",
		Testimonies: testimonies,
		Images:      images,
	})
}

type ContactPageData struct {
	Title  string
	Notice string
	Error  string
}

func (s *Service) handleGetContact(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "page.contact", ContactPageData{
		Title:  "Contact",
		Notice: r.URL.Query().Get("notice"),
		Error:  r.URL.Query().Get("error"),
	})
}

func (s *Service) handlePostContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectContact(w, r, "error", "Invalid form submission.")
		return
	}

	var form types.ContactForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		s.redirectContact(w, r, "error", "Invalid form submission.")
		return
	}

	if strings.TrimSpace(form.FirstName) == "" ||
		strings.TrimSpace(form.Email) == "" ||
		strings.TrimSpace(form.Message) == "" {
		s.redirectContact(w, r, "error", "Name, email, and message are required.")
		return
	}

	if err := s.dispatcher.ContactEmail(r.Context(), &form); err != nil {
		s.logger.WithError(err).Error("failed to send contact message")
		s.redirectContact(w, r, "error", "Could not send your message. Please try again.")
		return
	}

	s.redirectContact(w, r, "notice", "Thank you! Your message has been sent.")
}

func (s *Service) handleNewsletterSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	if email == "" || !strings.Contains(email, "@") {
		http.Redirect(w, r, "/?notice="+url.QueryEscape("Please enter a valid email address."), http.StatusSeeOther)
		return
	}

	if err := s.newsletterRepo.Subscribe(r.Context(), email); err != nil {
		s.logger.WithError(err).Error("failed to subscribe newsletter signup")
		http.Redirect(w, r, "/?notice="+url.QueryEscape("Something went wrong. Please try again."), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?notice="+url.QueryEscape("You are subscribed. God bless you!"), http.StatusSeeOther)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Service) redirectContact(w http.ResponseWriter, r *http.Request, key, msg string) {
	v := url.Values{}
	v.Set(key, msg)
	http.Redirect(w, r, "/contact?"+v.Encode(), http.StatusSeeOther)
}
