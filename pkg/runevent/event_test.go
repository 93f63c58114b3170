package runevent_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sedstart-action/pkg/runevent"
)

var _ = Describe("Decode", func() {
	It("decodes the known shapes", func() {
		ev, err := runevent.Decode(`{
			"message": "run started",
			"result": {"status": "PASS", "name": "checkout", "time": 1.25},
			"run": {"status": "RUNNING", "step": 3},
			"data": {"video": "https://cdn.example.com/v.mp4", "error": {"code": "E1"}}
		}`)
		Expect(err).NotTo(HaveOccurred())

		Expect(ev.Top.Message).To(Equal("run started"))
		Expect(ev.Nested).To(HaveKey(runevent.ShapeResult))
		Expect(ev.Nested[runevent.ShapeResult].Name).To(Equal("checkout"))
		Expect(ev.Nested[runevent.ShapeResult].Time).To(Equal("1.25"))
		Expect(ev.Nested[runevent.ShapeRun].Step).To(Equal("3"))
		Expect(ev.Nested[runevent.ShapeData].Video).To(Equal("https://cdn.example.com/v.mp4"))
		Expect(ev.Nested[runevent.ShapeData].Error).To(Equal(`{"code":"E1"}`))
	})

	It("leaves out shapes that are not objects", func() {
		ev, err := runevent.Decode(`{"data":"hello","run":7}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Nested).To(BeEmpty())

		_, ok := ev.Status()
		Expect(ok).To(BeFalse())
	})

	Describe("Field", func() {
		It("prefers the most specific section", func() {
			ev, err := runevent.Decode(`{"name":"top","result":{"name":"result"},"data":{"name":"data"}}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Field(func(s runevent.Section) string { return s.Name })).To(Equal("data"))
		})

		It("falls back to the top level", func() {
			ev, err := runevent.Decode(`{"message":"hello","run":{"status":"RUNNING"}}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Field(func(s runevent.Section) string { return s.Message })).To(Equal("hello"))
		})
	})
})

var _ = Describe("Render", func() {
	It("includes status, name, message and extras", func() {
		ev, err := runevent.Decode(`{"result":{"status":"FAIL","name":"login","message":"assertion failed","step":"4","time":"2.1s","error":"element not found","video":"https://v/1"}}`)
		Expect(err).NotTo(HaveOccurred())

		out := runevent.Render(ev, "FAIL")
		Expect(out).To(ContainSubstring("✗"))
		Expect(out).To(ContainSubstring("FAIL"))
		Expect(out).To(ContainSubstring("login"))
		Expect(out).To(ContainSubstring("assertion failed"))
		Expect(out).To(ContainSubstring("step="))
		Expect(out).To(ContainSubstring("2.1s"))
		Expect(out).To(ContainSubstring("element not found"))
		Expect(out).To(ContainSubstring("https://v/1"))
	})

	It("renders an event without a status", func() {
		ev, err := runevent.Decode(`{"message":"preparing browser"}`)
		Expect(err).NotTo(HaveOccurred())

		out := runevent.Render(ev, "")
		Expect(out).To(ContainSubstring("•"))
		Expect(out).To(ContainSubstring("preparing browser"))
		Expect(out).NotTo(ContainSubstring("step="))
	})

	DescribeTable("picks an icon per status",
		func(status, icon string) {
			Expect(runevent.Icon(status)).To(ContainSubstring(icon))
		},
		Entry("pass", "PASS", "✓"),
		Entry("success", "SUCCESS", "✓"),
		Entry("fail", "FAIL", "✗"),
		Entry("running", "RUNNING", "●"),
		Entry("other", "WHATEVER", "•"),
	)
})
