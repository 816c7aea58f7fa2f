// @title PixelForge 管理端 API 文档
// @version 1.0
// @description PixelForge 图像处理服务的管理统计与查询接口
// @host localhost:8080
// @BasePath /api
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"pixelforge-server-go/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	fmt.Printf("[%s] [INFO] [引导] 开始启动 pixelforge-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background(), *configPath); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "pixelforge-server failed: %v\n", err)
		os.Exit(1)
	}
}
