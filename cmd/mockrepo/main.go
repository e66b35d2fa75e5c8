package main

import (
	"content-repo/auth"
	"content-repo/infrastructure/grpc/server"
	"content-repo/infrastructure/grpc/uploadpb"
	"content-repo/internal"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mock repository terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run serves an in-memory repository until interrupted.
func run() (int, error) {
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	port := pflag.IntP("port", "p", config.MockRepositoryPort, "port to listen on")
	pflag.Parse()

	log := logs.GetLoggerFromString(config.LogLevel)

	address := fmt.Sprintf(":%d", *port)
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(auth.AuthInterceptor(config.AuthSecret)))
	uploadpb.RegisterUploadServiceServer(s, server.NewUploadServer(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("Shutting down mock repository")
		s.GracefulStop()
	}()

	log.Info("Mock repository listening", "address", address, "auth", config.AuthSecret != "")
	if err := s.Serve(lis); err != nil {
		return exitRuntime, fmt.Errorf("failed to serve: %w", err)
	}
	return exitOK, nil
}
