package api

import "net/http"

type loginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type presignRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req loginRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.deps.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sess)
}

func (s *Server) handlePresign(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload_presign"
	var req presignRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.PresignUpload(r.Context(), req.FileName, req.FileType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}
