package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mcdev12/dreamteams/go/internal/roster"
	"github.com/rs/zerolog/log"
)

type credentialsRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

type addMemberRequest struct {
	CharacterID int `json:"character_id"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return n, nil
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.Identity, req.Secret)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.loadRoster()
	writeJSON(w, http.StatusOK, sess)
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.sessions.Signup(r.Context(), req.Identity, req.Secret)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.loadRoster()
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Current()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// loadRoster fetches the new user's teams. Failures are logged; the user can retry via /api/teams/load.
func (s *Service) loadRoster() {
	if _, err := s.roster.LoadTeams(s.lifetime); err != nil {
		log.Warn().Err(err).Msg("failed to load teams after login")
	}
}

func (s *Service) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	var err error
	if r.URL.Query().Has("search") {
		err = s.catalog.Search(r.Context(), r.URL.Query().Get("search"))
	} else if snap := s.catalog.Snapshot(); len(snap.Characters) == 0 && snap.Cursor.Offset == 0 {
		err = s.catalog.LoadMore(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Snapshot())
}

func (s *Service) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.LoadMore(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Snapshot())
}

func (s *Service) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	character, err := s.catalog.FetchByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, character)
}

func (s *Service) handleListTeams(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Current()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if snap := s.roster.Snapshot(); !snap.Loaded || snap.OwnerID != sess.UserID {
		if _, err := s.roster.LoadTeams(s.lifetime); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.roster.Snapshot())
}

func (s *Service) handleLoadTeams(w http.ResponseWriter, r *http.Request) {
	if _, err := s.roster.LoadTeams(s.lifetime); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.roster.Snapshot())
}

func (s *Service) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req roster.CreateTeamRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	team, err := s.roster.CreateTeam(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Service) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.roster.DeleteTeam(r.Context(), teamID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAddMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addMemberRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CharacterID <= 0 {
		writeError(w, r, fmt.Errorf("%w: character_id is required", errBadRequest))
		return
	}

	character, err := s.catalog.FetchByID(r.Context(), req.CharacterID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	team, err := s.roster.AddMember(r.Context(), teamID, *character)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Service) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	characterID, err := pathInt(r, "characterID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	team, err := s.roster.RemoveMember(r.Context(), teamID, characterID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}
