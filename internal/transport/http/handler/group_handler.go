package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appusers/internal/domain"
	"appusers/internal/service"
	mdw "appusers/internal/transport/http/middleware"
	resp "appusers/internal/transport/http/response"
)

type GroupHandler struct {
	groups *service.GroupService
	log    *zap.Logger

	apiKey gin.HandlerFunc
	admin  gin.HandlerFunc
	json   gin.HandlerFunc
}

func NewGroupHandler(groups *service.GroupService, log *zap.Logger, apiKey, admin gin.HandlerFunc) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		log:    log,
		apiKey: apiKey,
		admin:  admin,
		json:   mdw.RequireJSON(),
	}
}

func (h *GroupHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/groups", h.apiKey, h.list)
	g.POST("/groups", h.admin, h.json, h.create)
	g.GET("/groups/:groupid", h.apiKey, h.retrieve)
	g.PUT("/groups/:groupid", h.admin, h.json, h.replace)
	g.PATCH("/groups/:groupid", h.admin, h.json, h.update)
	g.DELETE("/groups/:groupid", h.admin, h.delete)
	g.GET("/groups/:groupid/members", h.apiKey, h.listMembers)
	g.PUT("/groups/:groupid/members/:userid", h.admin, h.addMember)
	g.DELETE("/groups/:groupid/members/:userid", h.admin, h.removeMember)
}

func (h *GroupHandler) list(c *gin.Context) {
	var f domain.GroupFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := f.Validate(); err != nil {
		resp.Error(c, err)
		return
	}
	groups, err := h.groups.List(&f)
	if err != nil {
		resp.Error(c, err)
		return
	}
	fields := f.ReturnFields()
	out := make([]gin.H, 0, len(groups))
	for i := range groups {
		out = append(out, groupWire(&groups[i], true, fields))
	}
	resp.OK(c, out)
}

func (h *GroupHandler) create(c *gin.Context) {
	var in groupIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
		return
	}
	g, err := in.toNew()
	if err != nil {
		resp.Error(c, err)
		return
	}
	if err := h.groups.Create(g); err != nil {
		resp.Error(c, err)
		return
	}
	h.log.Info("group created", zap.Int64("groupid", g.GroupID), zap.String("groupname", g.Groupname))
	resp.Created(c, groupHref(g.GroupID), groupWire(g, false, nil))
}

func (h *GroupHandler) retrieve(c *gin.Context) {
	id, ok := pathID(c, "groupid")
	if !ok {
		return
	}
	g, err := h.groups.Retrieve(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, groupWire(g, false, nil))
}

func (h *GroupHandler) replace(c *gin.Context) {
	h.applyUpdate(c, true)
}

func (h *GroupHandler) update(c *gin.Context) {
	h.applyUpdate(c, false)
}

func (h *GroupHandler) applyUpdate(c *gin.Context, full bool) {
	id, ok := pathID(c, "groupid")
	if !ok {
		return
	}
	var in groupIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
		return
	}
	var upd domain.GroupUpdate
	if full {
		g, err := in.toNew()
		if err != nil {
			resp.Error(c, err)
			return
		}
		upd = domain.GroupUpdate{Groupname: &g.Groupname, Description: &g.Description}
	} else {
		var err error
		upd, err = in.toUpdate()
		if err != nil {
			resp.Error(c, err)
			return
		}
	}
	g, err := h.groups.Update(c.Request.Context(), id, upd)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, groupWire(g, false, nil))
}

func (h *GroupHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "groupid")
	if !ok {
		return
	}
	if err := h.groups.Delete(c.Request.Context(), id); err != nil {
		resp.Error(c, err)
		return
	}
	h.log.Info("group deleted", zap.Int64("groupid", id))
	resp.OK(c, gin.H{"message": "OK"})
}

func (h *GroupHandler) listMembers(c *gin.Context) {
	id, ok := pathID(c, "groupid")
	if !ok {
		return
	}
	users, err := h.groups.ListMembers(id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userWire(&users[i], true, nil))
	}
	resp.OK(c, out)
}

func (h *GroupHandler) addMember(c *gin.Context) {
	gid, ok := pathID(c, "groupid")
	if !ok {
		return
	}
	uid, ok := pathID(c, "userid")
	if !ok {
		return
	}
	if err := h.groups.AddMember(gid, uid); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"groupid": gid, "userid": uid})
}

func (h *GroupHandler) removeMember(c *gin.Context) {
	gid, ok := pathID(c, "groupid")
	if !ok {
		return
	}
	uid, ok := pathID(c, "userid")
	if !ok {
		return
	}
	if err := h.groups.RemoveMember(gid, uid); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"message": "OK"})
}
