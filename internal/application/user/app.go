package userapp

import (
	usercmd "github.com/ARUMANDESU/storefront-identity/internal/application/user/cmd"
	"github.com/ARUMANDESU/storefront-identity/pkg/env"
)

type App struct {
	Command Command
}

type Command struct {
	Register *usercmd.RegisterHandler
}

type Args struct {
	Mode     env.Mode
	UserRepo usercmd.UserRepo
}

func NewApp(args Args) *App {
	return &App{
		Command: Command{
			Register: usercmd.NewRegisterHandler(usercmd.RegisterHandlerArgs{
				Mode:     args.Mode,
				UserRepo: args.UserRepo,
			}),
		},
	}
}
