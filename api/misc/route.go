package misc

import appAPIHelper "assistante-suite/utils/api"

func RegisterMiscRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	registerHealthRoutes(apiHelper)
	registerRuntimeRoutes(apiHelper)
}
