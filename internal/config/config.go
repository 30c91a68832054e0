package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Server struct {
	Cert   string
	Key    string
	Bind   string
	Static string
	Proxy  bool
	PProf  bool
}

func (Server) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("bind", "127.0.0.1:8080", "address/port/socket to serve the gateway")
	if err := viper.BindPFlag("bind", cmd.PersistentFlags().Lookup("bind")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("cert", "", "path to the SSL cert used to secure the gateway")
	if err := viper.BindPFlag("cert", cmd.PersistentFlags().Lookup("cert")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("key", "", "path to the SSL key used to secure the gateway")
	if err := viper.BindPFlag("key", cmd.PersistentFlags().Lookup("key")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("static", "", "path to static client files to serve")
	if err := viper.BindPFlag("static", cmd.PersistentFlags().Lookup("static")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("proxy", false, "allow reverse proxies")
	if err := viper.BindPFlag("proxy", cmd.PersistentFlags().Lookup("proxy")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("pprof", false, "enable pprof endpoint available at /debug/pprof")
	if err := viper.BindPFlag("pprof", cmd.PersistentFlags().Lookup("pprof")); err != nil {
		return err
	}

	return nil
}

func (s *Server) Set() {
	s.Cert = viper.GetString("cert")
	s.Key = viper.GetString("key")
	s.Bind = viper.GetString("bind")
	s.Static = viper.GetString("static")
	s.Proxy = viper.GetBool("proxy")
	s.PProf = viper.GetBool("pprof")
}

type Gateway struct {
	TmpRoot       string
	MaxStreams    int
	Freshness     time.Duration
	TTL           time.Duration
	SweepInterval time.Duration
	ReadyTimeout  time.Duration
	SegmentTime   int
	ListSize      int
	FFmpegBinary  string
	PortalTimeout time.Duration
	PublicURL     string
}

func (Gateway) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("gateway.tmp-root", "", "workspace root for stream caches, defaults to the system temp dir")
	if err := viper.BindPFlag("gateway.tmp-root", cmd.PersistentFlags().Lookup("gateway.tmp-root")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("gateway.max-streams", 10, "maximum concurrent transcoder processes")
	if err := viper.BindPFlag("gateway.max-streams", cmd.PersistentFlags().Lookup("gateway.max-streams")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("gateway.freshness", 15*time.Second, "playlist age below which a cached stream is served without relaunch")
	if err := viper.BindPFlag("gateway.freshness", cmd.PersistentFlags().Lookup("gateway.freshness")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("gateway.ttl", 10*time.Minute, "idle age after which a stream workspace is removed")
	if err := viper.BindPFlag("gateway.ttl", cmd.PersistentFlags().Lookup("gateway.ttl")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("gateway.sweep-interval", 5*time.Minute, "how often expired workspaces are swept")
	if err := viper.BindPFlag("gateway.sweep-interval", cmd.PersistentFlags().Lookup("gateway.sweep-interval")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("gateway.ready-timeout", 5*time.Second, "bounded wait for the first transcoded playlist")
	if err := viper.BindPFlag("gateway.ready-timeout", cmd.PersistentFlags().Lookup("gateway.ready-timeout")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("gateway.segment-time", 4, "hls segment duration in seconds")
	if err := viper.BindPFlag("gateway.segment-time", cmd.PersistentFlags().Lookup("gateway.segment-time")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("gateway.list-size", 14, "hls rolling playlist window size")
	if err := viper.BindPFlag("gateway.list-size", cmd.PersistentFlags().Lookup("gateway.list-size")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("gateway.ffmpeg-binary", "ffmpeg", "path to the ffmpeg binary")
	if err := viper.BindPFlag("gateway.ffmpeg-binary", cmd.PersistentFlags().Lookup("gateway.ffmpeg-binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("gateway.portal-timeout", 15*time.Second, "timeout for portal api calls")
	if err := viper.BindPFlag("gateway.portal-timeout", cmd.PersistentFlags().Lookup("gateway.portal-timeout")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("gateway.public-url", "", "external base url prefixed to rewritten segment references, empty for gateway-relative")
	if err := viper.BindPFlag("gateway.public-url", cmd.PersistentFlags().Lookup("gateway.public-url")); err != nil {
		return err
	}

	return nil
}

func (g *Gateway) Set() {
	g.TmpRoot = viper.GetString("gateway.tmp-root")
	if g.TmpRoot == "" {
		g.TmpRoot = os.TempDir()
	}

	if err := os.MkdirAll(g.TmpRoot, 0755); err != nil {
		panic(err)
	}

	g.MaxStreams = viper.GetInt("gateway.max-streams")
	g.Freshness = viper.GetDuration("gateway.freshness")
	g.TTL = viper.GetDuration("gateway.ttl")
	g.SweepInterval = viper.GetDuration("gateway.sweep-interval")
	g.ReadyTimeout = viper.GetDuration("gateway.ready-timeout")
	g.SegmentTime = viper.GetInt("gateway.segment-time")
	g.ListSize = viper.GetInt("gateway.list-size")
	g.FFmpegBinary = viper.GetString("gateway.ffmpeg-binary")
	g.PortalTimeout = viper.GetDuration("gateway.portal-timeout")
	g.PublicURL = strings.TrimSuffix(viper.GetString("gateway.public-url"), "/")
}
