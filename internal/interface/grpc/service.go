package grpcservice

import (
	"fmt"
	"net"

	"github.com/ark-network/raffle/internal/config"
	"github.com/ark-network/raffle/internal/core/application"
	interfaces "github.com/ark-network/raffle/internal/interface"
	"github.com/ark-network/raffle/internal/interface/grpc/handlers"
	"github.com/ark-network/raffle/internal/interface/grpc/interceptors"
	rafflev1 "github.com/ark-network/raffle/pkg/api/raffle/v1"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpchealth "google.golang.org/grpc/health/grpc_health_v1"
)

type service struct {
	config     Config
	appConfig  *config.Config
	grpcServer *grpc.Server
}

func NewService(
	svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{config: svcConfig, appConfig: appConfig}, nil
}

func (s *service) Start() error {
	appSvc := s.appConfig.AppService()
	if err := appSvc.Start(); err != nil {
		return fmt.Errorf("failed to start app service: %s", err)
	}
	log.Info("started app service")

	lis, err := net.Listen("tcp", s.config.address())
	if err != nil {
		appSvc.Stop()
		return fmt.Errorf("failed to listen at %s: %s", s.config.address(), err)
	}

	s.grpcServer = newServer(appSvc)

	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			log.WithError(err).Warn("grpc server stopped")
		}
	}()
	log.Infof("started listening at %s", s.config.address())

	return nil
}

func (s *service) Stop() {
	// Stop closes the event streams too, GracefulStop would wait for them.
	s.grpcServer.Stop()
	log.Info("stopped grpc server")

	s.appConfig.AppService().Stop()
	log.Info("stopped app service")
}

func newServer(appSvc application.Service) *grpc.Server {
	grpcServer := grpc.NewServer(
		interceptors.UnaryInterceptor(),
		interceptors.StreamInterceptor(),
		grpc.Creds(insecure.NewCredentials()),
	)

	raffleHandler := handlers.NewHandler(appSvc)
	rafflev1.RegisterRaffleServiceServer(grpcServer, raffleHandler)

	healthHandler := handlers.NewHealthHandler()
	grpchealth.RegisterHealthServer(grpcServer, healthHandler)

	return grpcServer
}
