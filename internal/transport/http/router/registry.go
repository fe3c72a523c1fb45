package router

import "github.com/gin-gonic/gin"

// Module is anything that can mount its routes on the API root.
type Module interface {
	MountAPI(*gin.RouterGroup)
}

func Mount(root *gin.RouterGroup, mods ...Module) {
	for _, m := range mods {
		m.MountAPI(root)
	}
}
