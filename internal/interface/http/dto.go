package handlers

import (
	"mime/multipart"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/entity"
)

type placeResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Address     string             `json:"address"`
	Location    entity.Coordinates `json:"location"`
	Image       string             `json:"image"`
	Creator     string             `json:"creator"`
}

func toPlace(p *entity.Place) placeResponse {
	return placeResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location:    p.Location,
		Image:       p.ImageURL,
		Creator:     p.Creator,
	}
}

func toPlaces(ps []*entity.Place) []placeResponse {
	out := make([]placeResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPlace(p))
	}
	return out
}

// userResponse never carries the password hash.
type userResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Image  string   `json:"image"`
	Places []string `json:"places"`
}

func toUser(u *entity.User) userResponse {
	places := u.Places
	if places == nil {
		places = []string{}
	}
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.ImageURL, Places: places}
}

// openUpload exposes a multipart file as an application.Upload. The
// caller closes the returned file.
func openUpload(fh *multipart.FileHeader) (*application.Upload, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, f, nil
}
