package orchestrator

import (
	"fmt"
	"strings"
)

// Locale handling mirrors the extraction service: anything not starting
// with "en" is treated as Chinese.
func normalizeLocale(locale string) string {
	if locale == "" {
		return "en"
	}
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return "en"
	}
	return "zh"
}

func captureFailedText(locale string) string {
	if locale == "zh" {
		return "无法启动录音，请检查麦克风权限后重试。"
	}
	return "Could not start recording. Check microphone access and try again."
}

func encodingFailedText(locale string) string {
	if locale == "zh" {
		return "录音数据无法编码，请重新录制。"
	}
	return "The recording could not be encoded. Please record again."
}

func analyzeFailedText(locale string, err error) string {
	if locale == "zh" {
		return fmt.Sprintf("分析请求失败：%v。之前的结果未受影响，可重试。", err)
	}
	return fmt.Sprintf("Analysis failed: %v. Your previous results are unchanged; try again.", err)
}

func confirmFailedText(locale string, err error) string {
	if locale == "zh" {
		return fmt.Sprintf("执行请求失败：%v。", err)
	}
	return fmt.Sprintf("Execution failed: %v.", err)
}

func rescheduleFailedText(locale string, err error) string {
	if locale == "zh" {
		return fmt.Sprintf("改期请求失败：%v。", err)
	}
	return fmt.Sprintf("Reschedule failed: %v.", err)
}

func calendarWarningText(locale string) string {
	if locale == "zh" {
		return "日程未能创建（时间冲突或失败）。可为该操作提交改期说明。"
	}
	return "The calendar event could not be created (conflict or failure). You can submit a reschedule instruction for it."
}

func executionWarningText(locale string) string {
	if locale == "zh" {
		return "部分操作未能完成，请查看各项结果。"
	}
	return "Some actions did not complete. Review the individual results."
}

func executionSuccessText(locale, calendarLine string) string {
	base := "All actions completed."
	if locale == "zh" {
		base = "全部操作已完成。"
	}
	if calendarLine != "" {
		return base + " " + calendarLine
	}
	return base
}

// calendarConfirmationText renders the localized confirmation line for a
// successfully created calendar event.
func calendarConfirmationText(locale string, payload map[string]any) string {
	title := payloadString(payload, "title", defaultTitle(locale))
	date := payloadString(payload, "date", "")
	span := timeSpan(payload)

	if locale == "zh" {
		return fmt.Sprintf("日历已创建：%s，%s %s。", title, date, span)
	}
	return fmt.Sprintf("Calendar confirmed: %s on %s %s.", title, date, span)
}

// rescheduleLineText renders the normalized correction instruction from an
// adjusted calendar action: title, date, time range, and timezone.
func rescheduleLineText(locale string, payload map[string]any) string {
	title := payloadString(payload, "title", defaultTitle(locale))
	date := payloadString(payload, "date", "")
	span := timeSpan(payload)
	tz := payloadString(payload, "timezone", DefaultTimezone)

	if locale == "zh" {
		return fmt.Sprintf("改期更新：将“%s”改为 %s %s（时区：%s）。", title, date, span, tz)
	}
	return fmt.Sprintf("Reschedule update: move %q to %s %s (Timezone: %s).", title, date, span, tz)
}

func defaultTitle(locale string) string {
	if locale == "zh" {
		return "日程安排"
	}
	return "Meeting"
}

func timeSpan(payload map[string]any) string {
	start := payloadString(payload, "start_time", "")
	end := payloadString(payload, "end_time", "")
	if start != "" && end != "" {
		return start + "-" + end
	}
	return start
}

func payloadString(payload map[string]any, key, fallback string) string {
	if payload == nil {
		return fallback
	}
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
