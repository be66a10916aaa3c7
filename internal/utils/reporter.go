package utils

import (
	"fmt"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

// WriteRunReport 写入运行报告
// 报告落在语料文件旁边: <output>.report.json
func WriteRunReport(report *models.RunReport) error {
	report.Resources = CaptureResources()

	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}

	path := report.OutputFile + ".report.json"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Infof("✅ 运行报告已生成: %s", path)
	return nil
}

// CaptureResources 采集主机和进程资源快照
// 任一指标采集失败时保留零值,不影响报告生成
func CaptureResources() models.ResourceSnapshot {
	var snapshot models.ResourceSnapshot

	if vmStat, err := mem.VirtualMemory(); err == nil {
		snapshot.TotalMemory = vmStat.Total
		snapshot.UsedMemory = vmStat.Used
		snapshot.MemoryPercent = vmStat.UsedPercent
	} else {
		Debugf("获取系统内存失败: %v", err)
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snapshot.CPUPercent = percents[0]
	} else if err != nil {
		Debugf("获取CPU使用率失败: %v", err)
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	snapshot.HeapAlloc = memStats.HeapAlloc

	return snapshot
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
