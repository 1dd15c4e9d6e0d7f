package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// Локальный запуск: сервер в фоне, сборка expensectl, ожидание /health.
//
//	go run launcher.go
func main() {
	fmt.Println("Запуск Expense Tracker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientName := "expensectl"
	if runtime.GOOS == "windows" {
		clientName = "expensectl.exe"
	}

	// сервер на фоне, завершается вместе с лаунчером
	server := exec.CommandContext(ctx, "go", "run", "./cmd/server")
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr

	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска сервера: %v\n", err)
		return
	}

	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка клиента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/expensectl")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки клиента: %v\n", err)
		}
	}

	addr := os.Getenv("EXPENSETRACKER_HEALTH_URL")
	if addr == "" {
		addr = "http://127.0.0.1:8080/health"
	}
	if err := waitHealthy(ctx, addr, 30*time.Second); err != nil {
		fmt.Printf("Сервер не ответил на %s: %v\n", addr, err)
	} else {
		fmt.Println("Сервер запущен")
		fmt.Printf("Данный терминал не закрывай. Открой новый и запускай: %s%s --help\n", clientPrefix(), clientName)
	}

	_ = server.Wait()
}

// waitHealthy опрашивает url, пока тот не ответит 200 или не истечёт timeout.
func waitHealthy(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if res, err := client.Do(req); err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func clientPrefix() string {
	if runtime.GOOS == "windows" {
		return ".\\"
	}
	return "./"
}
