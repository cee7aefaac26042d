package summary

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func readCSV(path string) [][]string {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())
	Expect(bytes.HasPrefix(data, utf8BOM)).To(BeTrue(), "file should start with a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	Expect(err).NotTo(HaveOccurred())
	return records
}

var _ = Describe("WriteSummaryCSV", func() {
	var (
		path   string
		groups []*ConsolidatedGroup
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "out.csv")
		groups = []*ConsolidatedGroup{
			{
				HospitalName:       "山田病院",
				PatientName:        "田中太郎",
				TotalAmount:        4500,
				ReceiptCount:       3,
				ReceiptsWithAmount: 2,
				Filenames:          []string{"r1.jpg", "r2.jpg", "r3.jpg"},
			},
		}
	})

	JustBeforeEach(func() {
		Expect(WriteSummaryCSV(path, groups)).To(Succeed())
	})

	It("writes the fixed column order", func() {
		records := readCSV(path)
		Expect(records[0]).To(Equal([]string{
			"hospital_name", "patient_name", "medical_cure", "medicine",
			"support", "others", "total_amount", "receipt_count",
			"receipts_with_amount", "filenames",
		}))
	})

	It("writes one row per group", func() {
		records := readCSV(path)
		Expect(records).To(HaveLen(2))
		Expect(records[1]).To(Equal([]string{
			"山田病院", "田中太郎", "該当する", "", "", "",
			"4500", "3", "2", "r1.jpg, r2.jpg, r3.jpg",
		}))
	})

	When("there are no groups", func() {
		BeforeEach(func() {
			groups = nil
		})

		It("still writes the header", func() {
			Expect(readCSV(path)).To(HaveLen(1))
		})
	})
})

var _ = Describe("WriteDetailCSV", func() {
	It("writes one row per item with the amount rendered", func() {
		path := filepath.Join(GinkgoT().TempDir(), "detail.csv")
		items := []ReceiptItem{
			item("r1.jpg", "田中太郎", "山田病院", "1,500円"),
			item("r2.jpg", "田中太郎", "山田病院", "不明"),
		}
		Expect(WriteDetailCSV(path, items)).To(Succeed())

		records := readCSV(path)
		Expect(records[0]).To(Equal([]string{"filename", "patient_name", "hospital_name", "amount"}))
		Expect(records[1]).To(Equal([]string{"r1.jpg", "田中太郎", "山田病院", "1500"}))
		Expect(records[2]).To(Equal([]string{"r2.jpg", "田中太郎", "山田病院", "不明"}))
	})
})

var _ = Describe("DetailPath", func() {
	DescribeTable("derives the detail file name",
		func(output, expected string) {
			Expect(DetailPath(output)).To(Equal(expected))
		},
		Entry("default output", "medical_receipts_data.csv", "medical_receipts_data_detail.csv"),
		Entry("nested path", "out/summary.csv", "out/summary_detail.csv"),
		Entry("no extension", "summary", "summary_detail"),
	)
})
