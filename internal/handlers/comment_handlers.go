package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
)

const maxCommentLength = 1000

type commentRequest struct {
	Body string `json:"body"`
}

func (c *commentRequest) validate() error {
	c.Body = strings.TrimSpace(c.Body)
	if c.Body == "" {
		return badRequest("comment body is required")
	}
	if utf8.RuneCountInString(c.Body) > maxCommentLength {
		return badRequest("comment must be at most %d characters", maxCommentLength)
	}
	return nil
}

// ListComments returns a photo's comments, oldest first.
func ListComments(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photoID, err := idParam(r, "photoID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := database.GetPhoto(r.Context(), db, photoID, 0); err != nil {
			writeError(w, r, err)
			return
		}
		comments, err := database.ListComments(r.Context(), db, photoID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, comments)
	}
}

// PostComment adds a comment by the logged-in user.
func PostComment(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		photoID, err := idParam(r, "photoID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := database.GetPhoto(r.Context(), db, photoID, user.ID); err != nil {
			writeError(w, r, err)
			return
		}

		comment, err := database.CreateComment(r.Context(), db, photoID, user.ID, req.Body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, comment)
	}
}

// commentFor loads the comment named in the URL and checks it belongs to the
// photo in the URL and that the photo is still visible.
func commentFor(r *http.Request, db *database.DB) (*models.Comment, error) {
	photoID, err := idParam(r, "photoID")
	if err != nil {
		return nil, err
	}
	commentID, err := idParam(r, "commentID")
	if err != nil {
		return nil, err
	}
	comment, err := database.GetComment(r.Context(), db, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PhotoID != photoID {
		return nil, database.ErrNotFound
	}
	if _, err := database.GetPhoto(r.Context(), db, photoID, 0); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits the caller's own comment.
func UpdateComment(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		comment, err := commentFor(r, db)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if comment.UserID != user.ID {
			writeError(w, r, forbidden("only the author can edit this comment"))
			return
		}
		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, r, err)
			return
		}

		if err := database.UpdateComment(r.Context(), db, comment.ID, req.Body); err != nil {
			writeError(w, r, err)
			return
		}
		comment, err = database.GetComment(r.Context(), db, comment.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, comment)
	}
}

// DeleteComment removes a comment. The author and the admin may delete.
func DeleteComment(db *database.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		admin := sessions.IsAdmin(r)
		if user == nil && !admin {
			writeError(w, r, errUnauthorized)
			return
		}
		comment, err := commentFor(r, db)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !admin && comment.UserID != user.ID {
			writeError(w, r, forbidden("only the author can delete this comment"))
			return
		}

		if err := database.DeleteComment(r.Context(), db, comment.ID); err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "comment deleted")
	}
}
