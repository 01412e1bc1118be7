package admin

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"odontologia/identity"
)

const (
	sessionUID      = "admin_uid"
	sessionEmail    = "admin_email"
	sessionEditMode = "edit_mode"
)

// EditorState is the authentication gate of the page. Edit mode can only
// be on while an administrator is signed in.
type EditorState struct {
	SignedIn bool   `json:"signedIn"`
	UID      string `json:"-"`
	Email    string `json:"email,omitempty"`
	EditMode bool   `json:"editMode"`
}

// SignIn moves the gate to the authenticated state. Edit mode is left as is.
func (s *EditorState) SignIn(p identity.Principal) {
	s.SignedIn = true
	s.UID = p.UID
	s.Email = p.Email
}

// SignOut forces edit mode off whatever it was before.
func (s *EditorState) SignOut() {
	*s = EditorState{}
}

// ToggleEditMode flips edit mode and returns the new value. It has no
// effect on an anonymous visitor.
func (s *EditorState) ToggleEditMode() bool {
	if !s.SignedIn {
		s.EditMode = false
		return false
	}
	s.EditMode = !s.EditMode
	return s.EditMode
}

// State derives the gate from the request session. No session means an
// anonymous visitor with edit mode off.
func State(c *gin.Context) EditorState {
	session := sessions.Default(c)
	uid, _ := session.Get(sessionUID).(string)
	if uid == "" {
		return EditorState{}
	}
	email, _ := session.Get(sessionEmail).(string)
	editMode, _ := session.Get(sessionEditMode).(bool)
	return EditorState{SignedIn: true, UID: uid, Email: email, EditMode: editMode}
}

func saveState(c *gin.Context, st EditorState) error {
	session := sessions.Default(c)
	if !st.SignedIn {
		session.Clear()
		return session.Save()
	}
	session.Set(sessionUID, st.UID)
	session.Set(sessionEmail, st.Email)
	session.Set(sessionEditMode, st.EditMode)
	return session.Save()
}

// IsSignedIn reports whether the request comes from a signed-in administrator.
func IsSignedIn(c *gin.Context) bool {
	return State(c).SignedIn
}
