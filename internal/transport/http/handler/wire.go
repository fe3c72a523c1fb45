package handler

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin"

	"appusers/internal/domain"
)

// Pure mapping between the storage representation and the wire
// representation: email/phone live under contactInfo on the wire,
// userid/groupid are read-only on write, list items carry a href
// self-link. Nothing here touches validation state or the store.

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z]\w{2,19}$`)
	nameRe     = regexp.MustCompile(`^\w[\w-]{0,29}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9+][0-9.-]{5,19}$`)
)

func userHref(id int64) string  { return fmt.Sprintf("/users/%d", id) }
func groupHref(id int64) string { return fmt.Sprintf("/groups/%d", id) }

// userWire serializes a user. fields restricts the projection; an
// empty list means every field. href self-links are only added on
// collection items.
func userWire(u *domain.User, withHref bool, fields []string) gin.H {
	sel := fieldSet(fields)
	out := gin.H{}
	if sel("userid") {
		out["userid"] = u.UserID
	}
	if sel("username") {
		out["username"] = u.Username
	}
	if sel("firstname") {
		out["firstname"] = u.Firstname
	}
	if sel("lastname") {
		out["lastname"] = u.Lastname
	}
	contact := map[string]any{}
	if sel("email") {
		contact["email"] = u.Email
	}
	if sel("phone") {
		contact["phone"] = u.Phone
	}
	if len(contact) > 0 {
		out["contactInfo"] = contact
	}
	if withHref {
		out["href"] = userHref(u.UserID)
	}
	return out
}

func groupWire(g *domain.Group, withHref bool, fields []string) gin.H {
	sel := fieldSet(fields)
	out := gin.H{}
	if sel("groupid") {
		out["groupid"] = g.GroupID
	}
	if sel("groupname") {
		out["groupname"] = g.Groupname
	}
	if sel("description") {
		out["description"] = g.Description
	}
	if withHref {
		out["href"] = groupHref(g.GroupID)
	}
	return out
}

func fieldSet(fields []string) func(string) bool {
	if len(fields) == 0 {
		return func(string) bool { return true }
	}
	m := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return func(name string) bool {
		_, ok := m[name]
		return ok
	}
}

type contactInfoIn struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// userIn is the write-side user representation. userid is absent by
// design: it is read-only and assigned by the store.
type userIn struct {
	Username    *string        `json:"username"`
	Firstname   *string        `json:"firstname"`
	Lastname    *string        `json:"lastname"`
	ContactInfo *contactInfoIn `json:"contactInfo"`
}

func (in *userIn) email() *string {
	if in.ContactInfo == nil {
		return nil
	}
	return in.ContactInfo.Email
}

func (in *userIn) phone() *string {
	if in.ContactInfo == nil {
		return nil
	}
	return in.ContactInfo.Phone
}

// toNew validates a full representation, as required by create and
// replace.
func (in *userIn) toNew() (*domain.User, error) {
	upd, err := in.toUpdate()
	if err != nil {
		return nil, err
	}
	if upd.Username == nil || upd.Firstname == nil || upd.Lastname == nil ||
		upd.Email == nil || upd.Phone == nil {
		return nil, domain.Validation("username, firstname, lastname, email and phone are required")
	}
	return &domain.User{
		Username:  *upd.Username,
		Firstname: *upd.Firstname,
		Lastname:  *upd.Lastname,
		Email:     *upd.Email,
		Phone:     *upd.Phone,
	}, nil
}

// toUpdate validates whatever fields are present, as required by
// partial update.
func (in *userIn) toUpdate() (domain.UserUpdate, error) {
	var upd domain.UserUpdate
	if in.Username != nil {
		if !usernameRe.MatchString(*in.Username) {
			return upd, domain.Validation("username must be 3-20 word characters starting with a letter")
		}
		upd.Username = in.Username
	}
	if in.Firstname != nil {
		if !nameRe.MatchString(*in.Firstname) {
			return upd, domain.Validation("invalid firstname")
		}
		upd.Firstname = in.Firstname
	}
	if in.Lastname != nil {
		if !nameRe.MatchString(*in.Lastname) {
			return upd, domain.Validation("invalid lastname")
		}
		upd.Lastname = in.Lastname
	}
	if e := in.email(); e != nil {
		if !emailRe.MatchString(*e) {
			return upd, domain.Validation("invalid email")
		}
		upd.Email = e
	}
	if p := in.phone(); p != nil {
		if !phoneRe.MatchString(*p) {
			return upd, domain.Validation("invalid phone")
		}
		upd.Phone = p
	}
	return upd, nil
}

type groupIn struct {
	Groupname   *string `json:"groupname"`
	Description *string `json:"description"`
}

func (in *groupIn) toNew() (*domain.Group, error) {
	upd, err := in.toUpdate()
	if err != nil {
		return nil, err
	}
	if upd.Groupname == nil || upd.Description == nil {
		return nil, domain.Validation("groupname and description are required")
	}
	return &domain.Group{Groupname: *upd.Groupname, Description: *upd.Description}, nil
}

func (in *groupIn) toUpdate() (domain.GroupUpdate, error) {
	var upd domain.GroupUpdate
	if in.Groupname != nil {
		if !usernameRe.MatchString(*in.Groupname) {
			return upd, domain.Validation("groupname must be 3-20 word characters starting with a letter")
		}
		upd.Groupname = in.Groupname
	}
	if in.Description != nil {
		upd.Description = in.Description
	}
	return upd, nil
}
