package luaengine

import (
	lua "github.com/yuin/gopher-lua"

	"padterm/config"
)

func ConfigPath(L *lua.LState) int {
	L.Push(lua.LString(config.CFG.Path))
	return 1
}

// SetMOTD lets init.lua override the message of the day.
func SetMOTD(L *lua.LState) int {
	config.CFG.MOTD = L.CheckString(1)
	return 0
}

// SetPadRows lets init.lua override the scrollback pad height.
func SetPadRows(L *lua.LState) int {
	n := L.CheckInt(1)
	if n > 0 {
		config.CFG.PadRows = n
	}
	return 0
}

func Startup(initLua string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetGlobal("ConfigPath", L.NewFunction(ConfigPath))
	L.SetGlobal("SetMOTD", L.NewFunction(SetMOTD))
	L.SetGlobal("SetPadRows", L.NewFunction(SetPadRows))
	return L.DoFile(initLua)
}
