//go:build ignore

package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

func main() {
	fmt.Println("Запуск gophadmin devserver...")

	clientName := "gophadmin"
	if runtime.GOOS == "windows" {
		clientName = "gophadmin.exe"
	}
	// запускаем devserver на фоне, он печатает токен seed-пользователя
	server := exec.Command("go", "run", "./cmd/devserver")
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr

	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска devserver: %v\n", err)
		return
	}

	time.Sleep(3 * time.Second)
	// собираем агента
	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка агента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/gophadmin")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки агента: %v\n", err)
			server.Process.Kill()
			return
		}
		// если не винда даём права
		if runtime.GOOS != "windows" {
			os.Chmod(clientName, 0o755)
		}
	}

	fmt.Println("devserver запущен")
	run := "./" + clientName
	if runtime.GOOS == "windows" {
		run = ".\\" + clientName
	}
	fmt.Printf("Данный терминал не закрывай. Открой новый и выполни:\n  %s login\n  %s whoami\n", run, run)

	server.Wait()
}
