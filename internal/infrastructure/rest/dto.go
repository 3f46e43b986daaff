package rest

import (
	"bytes"
	"encoding/json"
	"time"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/usecase"
)

type domainRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type domainResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toDomainResponse(d domain.ScientificDomain) domainResponse {
	return domainResponse{ID: d.ID, Name: d.Name}
}

// nullableInt distinguishes an absent field from an explicit null.
type nullableInt struct {
	Set   bool
	Value *int
}

func (n *nullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type articleRequest struct {
	ScientificDomain *string     `json:"scientific_domain" validate:"omitempty,min=1,max=100"`
	Title            *string     `json:"title" validate:"omitempty,min=1,max=200"`
	Content          *string     `json:"content"`
	PageCount        *int        `json:"page_count" validate:"omitempty,min=0"`
	Points           *int        `json:"points" validate:"omitempty,min=0"`
	MinimumPoints    nullableInt `json:"minimum_points"`
	File             *string     `json:"file"`
}

func (r articleRequest) toInput() usecase.ArticleInput {
	in := usecase.ArticleInput{
		DomainName: r.ScientificDomain,
		Title:      r.Title,
		Content:    r.Content,
		PageCount:  r.PageCount,
		Points:     r.Points,
		FileRef:    r.File,
	}
	if r.MinimumPoints.Set {
		v := r.MinimumPoints.Value
		in.MinimumPoints = &v
	}
	return in
}

type articleResponse struct {
	ID               int64     `json:"id"`
	DomainID         int64     `json:"domain_id"`
	ScientificDomain string    `json:"scientific_domain"`
	Title            string    `json:"title"`
	Content          string    `json:"content,omitempty"`
	Excerpt          string    `json:"excerpt,omitempty"`
	PageCount        int       `json:"page_count"`
	Points           int       `json:"points"`
	MinimumPoints    *int      `json:"minimum_points"`
	FileURL          string    `json:"file_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// toArticleResponse includes the body only when withContent is set; listings
// carry the excerpt instead.
func toArticleResponse(v usecase.ArticleView, withContent bool) articleResponse {
	resp := articleResponse{
		ID:               v.ID,
		DomainID:         v.DomainID,
		ScientificDomain: v.DomainName,
		Title:            v.Title,
		Excerpt:          v.Excerpt,
		PageCount:        v.PageCount,
		Points:           v.Points,
		MinimumPoints:    v.MinimumPoints,
		FileURL:          v.FileURL,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
	if withContent {
		resp.Content = v.Content
	}
	return resp
}

func toArticleResponses(views []usecase.ArticleView) []articleResponse {
	out := make([]articleResponse, len(views))
	for i, v := range views {
		out[i] = toArticleResponse(v, false)
	}
	return out
}

type readingStateCreateRequest struct {
	Article     int64   `json:"article" validate:"required,gt=0"`
	Status      *string `json:"status" validate:"omitempty,oneof=reading read reviewed"`
	PageLeftOff *int    `json:"page_left_off" validate:"omitempty,min=0"`
}

type readingStateUpdateRequest struct {
	Status      *string `json:"status" validate:"omitempty,oneof=reading read reviewed"`
	PageLeftOff *int    `json:"page_left_off" validate:"omitempty,min=0"`
}

func toReadingUpdate(status *string, page *int) usecase.ReadingUpdate {
	var u usecase.ReadingUpdate
	if status != nil {
		s := domain.ReadingStatus(*status)
		u.Status = &s
	}
	u.PageLeftOff = page
	return u
}

type readingStateResponse struct {
	ID          int64     `json:"id"`
	Article     int64     `json:"article"`
	Status      string    `json:"status"`
	PageLeftOff int       `json:"page_left_off"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toReadingStateResponse(rs domain.ReadingState) readingStateResponse {
	return readingStateResponse{
		ID:          rs.ID,
		Article:     rs.ArticleID,
		Status:      string(rs.Status),
		PageLeftOff: rs.PageLeftOff,
		CreatedAt:   rs.CreatedAt,
		UpdatedAt:   rs.UpdatedAt,
	}
}

type reviewRequest struct {
	Article int64 `json:"article" validate:"required,gt=0"`
	Score   *int  `json:"score" validate:"required,min=0,max=10"`
}

type reviewResponse struct {
	ID        int64     `json:"id"`
	Article   int64     `json:"article"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReviewResponse(r domain.Review) reviewResponse {
	return reviewResponse{ID: r.ID, Article: r.ArticleID, Score: r.Score, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

type registerRequest struct {
	Username          string   `json:"username" validate:"omitempty,max=150"`
	ScientificDomains []string `json:"scientific_domains" validate:"dive,required,max=100"`
}

type profileUpdateRequest struct {
	ScientificDomains []string `json:"scientific_domains" validate:"required,dive,required,max=100"`
}

type progressResponse struct {
	ScientificDomain string `json:"scientific_domain"`
	DomainID         int64  `json:"domain_id"`
	CurrentPoints    int    `json:"current_points"`
	Active           bool   `json:"active"`
}

type profileResponse struct {
	UserID            string             `json:"user_id"`
	Username          string             `json:"username"`
	ScientificDomains []string           `json:"scientific_domains"`
	Progress          []progressResponse `json:"progress"`
}

func toProgressResponses(items []domain.DomainProgress) []progressResponse {
	out := make([]progressResponse, len(items))
	for i, p := range items {
		out[i] = progressResponse{
			ScientificDomain: p.Domain.Name,
			DomainID:         p.Domain.ID,
			CurrentPoints:    p.CurrentPoints,
			Active:           p.Active,
		}
	}
	return out
}

func toProfileResponse(v domain.ProfileView) profileResponse {
	return profileResponse{
		UserID:            v.Profile.UserID.String(),
		Username:          v.Profile.Username,
		ScientificDomains: v.Interests,
		Progress:          toProgressResponses(v.Progress),
	}
}
