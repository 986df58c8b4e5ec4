package solver

import (
	"math"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/halo"
	"github.com/sarchlab/tealeaf/topology"
	"github.com/sarchlab/tealeaf/transport"
)

var _ = Describe("RunTimestep against a mock driver", func() {
	var (
		mockCtrl *gomock.Controller
		driver   *MockDriver
		cl       *transport.Cluster
		c        *chunk.Chunk
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		driver = NewMockDriver(mockCtrl)

		var err error
		cl, err = transport.NewCluster(1, 1)
		Expect(err).NotTo(HaveOccurred())

		c = chunk.New(topology.Coord{X: 0, Y: 0}, 2, 4, 4, 0, 4, 0, 4)
	})

	AfterEach(func() {
		cl.Finalize()
		mockCtrl.Finish()
	})

	It("initialises once, exchanges the driver's own fields, and iterates until the residual clears eps", func() {
		driver.EXPECT().Init(c, Conductivity, 0.1, 0.1).Times(1)
		driver.EXPECT().FieldsToExchange().Return(chunk.NewSet(chunk.U)).AnyTimes()

		calls := 0
		driver.EXPECT().Iterate(c).DoAndReturn(func(*chunk.Chunk) float64 {
			calls++
			if calls >= 3 {
				return 0
			}
			return 1
		}).Times(3)

		result, err := RunTimestep(cl, c, driver, 2, 10, 1e-10, 0.1, 0.1, Conductivity, halo.FaultSettings{Enabled: false})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Iterations).To(Equal(3))
		Expect(result.FinalError).To(Equal(0.0))
	})

	It("stops iterating and reports an error the first time the residual diverges", func() {
		driver.EXPECT().Init(c, Conductivity, 0.1, 0.1).Times(1)
		driver.EXPECT().FieldsToExchange().Return(chunk.NewSet(chunk.U)).AnyTimes()
		driver.EXPECT().Iterate(c).Return(math.NaN()).Times(1)

		_, err := RunTimestep(cl, c, driver, 2, 10, 1e-10, 0.1, 0.1, Conductivity, halo.FaultSettings{Enabled: false})

		Expect(err).To(HaveOccurred())
	})
})
