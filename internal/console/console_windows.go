//go:build windows

package console

import (
	"log/slog"
	"os"
	"sync"
	"syscall"
	"unsafe"
)

var (
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procGetConsoleWindow           = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole               = kernel32.NewProc("AllocConsole")
	procFreeConsole                = kernel32.NewProc("FreeConsole")
	procGetStdHandle               = kernel32.NewProc("GetStdHandle")
	procCreateToolhelp32Snapshot   = kernel32.NewProc("CreateToolhelp32Snapshot")
	procProcess32First             = kernel32.NewProc("Process32FirstW")
	procProcess32Next              = kernel32.NewProc("Process32NextW")
	procOpenProcess                = kernel32.NewProc("OpenProcess")
	procQueryFullProcessImageNameW = kernel32.NewProc("QueryFullProcessImageNameW")
	procSetConsoleCtrlHandler      = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	th32csSnapProcess       = 0x00000002
	processQueryLimitedInfo = 0x1000
	maxPath                 = 260
	ctrlCEvent              = 0
	ctrlBreakEvent          = 1
)

// GetStdHandle takes DWORD(-10), DWORD(-11), DWORD(-12).
var (
	stdInputHandle  = ^uintptr(9)
	stdOutputHandle = ^uintptr(10)
	stdErrorHandle  = ^uintptr(11)
)

type processEntry32 struct {
	Size            uint32
	Usage           uint32
	ProcessID       uint32
	DefaultHeapID   uintptr
	ModuleID        uint32
	Threads         uint32
	ParentProcessID uint32
	PriClassBase    int32
	Flags           uint32
	ExeFile         [maxPath]uint16
}

// Interactive reports whether the process has a console to log to. A build
// double-clicked from Explorer drops any auto-created console and returns
// false; a GUI build started from a terminal allocates one.
func Interactive() bool {
	fromExplorer := launchedFromExplorer()
	if hasConsole() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}
	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsole() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams points os.Std* at a freshly allocated console.
func redirectStdStreams() {
	out, _, _ := procGetStdHandle.Call(stdOutputHandle)
	errh, _, _ := procGetStdHandle.Call(stdErrorHandle)
	in, _, _ := procGetStdHandle.Call(stdInputHandle)
	if out == 0 || errh == 0 {
		return
	}
	os.Stdout = os.NewFile(out, "/dev/stdout")
	os.Stderr = os.NewFile(errh, "/dev/stderr")
	if in != 0 {
		os.Stdin = os.NewFile(in, "/dev/stdin")
	}
}

func launchedFromExplorer() bool {
	ppid := parentPID(os.Getpid())
	if ppid == 0 {
		return false
	}
	return isExplorer(imageName(ppid))
}

func parentPID(pid int) int {
	snap, _, _ := procCreateToolhelp32Snapshot.Call(th32csSnapProcess, 0)
	if snap == uintptr(syscall.InvalidHandle) {
		return 0
	}
	defer syscall.CloseHandle(syscall.Handle(snap))

	var e processEntry32
	e.Size = uint32(unsafe.Sizeof(e))
	ok, _, _ := procProcess32First.Call(snap, uintptr(unsafe.Pointer(&e)))
	for ok != 0 {
		if int(e.ProcessID) == pid {
			return int(e.ParentProcessID)
		}
		ok, _, _ = procProcess32Next.Call(snap, uintptr(unsafe.Pointer(&e)))
	}
	return 0
}

func imageName(pid int) string {
	h, _, _ := procOpenProcess.Call(processQueryLimitedInfo, 0, uintptr(pid))
	if h == 0 {
		return ""
	}
	defer syscall.CloseHandle(syscall.Handle(h))

	var buf [maxPath]uint16
	size := uint32(maxPath)
	ok, _, _ := procQueryFullProcessImageNameW.Call(h, 0, uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ok == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:size])
}

// HandleInterrupt registers a console control handler that calls shutdown
// once on Ctrl+C or Ctrl+Break. SDL replaces console handlers during init,
// so the returned rearm must be called after the SDL reader has started.
func HandleInterrupt(shutdown func(), logger *slog.Logger) (rearm func()) {
	var once sync.Once
	cb := syscall.NewCallback(func(ctrlType uint32) uintptr {
		if ctrlType == ctrlCEvent || ctrlType == ctrlBreakEvent {
			once.Do(shutdown)
			return 1
		}
		return 0
	})
	register := func() {
		if ok, _, _ := procSetConsoleCtrlHandler.Call(cb, 1); ok == 0 {
			logger.Warn("failed to set console control handler")
		}
	}
	register()
	return register
}
